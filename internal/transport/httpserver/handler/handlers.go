package handler

import (
	relationsdomain "patron-crm-go/internal/domain/relations"
	"patron-crm-go/pkg/logger"
)

type Handlers struct {
	Relations *relationsdomain.Service
	log       logger.Logger
}

func New(relations *relationsdomain.Service, log logger.Logger) *Handlers {
	if log == nil {
		log = logger.Nop()
	}
	return &Handlers{
		Relations: relations,
		log:       log,
	}
}
