package resolver

import (
	"mod-manager/core/collection"
	"mod-manager/core/gamedata"

	"go.uber.org/zap"
)

// Answer is the result of one lookup.
type Answer struct {
	Path     gamedata.GamePath      `json:"path"`
	Override bool                   `json:"override"`
	Result   *collection.Resolution `json:"result,omitempty"`
}

// Service answers path lookups for the file-loading side.
type Service struct {
	router *collection.Router
	logger *zap.Logger
}

// NewService creates a new resolver service.
func NewService(router *collection.Router, logger *zap.Logger) *Service {
	return &Service{router: router, logger: logger}
}

// Resolve normalizes raw and looks it up for actor.
func (s *Service) Resolve(raw, actor string) (*Answer, error) {
	path, err := gamedata.NewGamePath(raw)
	if err != nil {
		return nil, err
	}
	res, ok := s.router.Resolve(path, actor)
	if !ok {
		return &Answer{Path: path}, nil
	}
	return &Answer{Path: path, Override: true, Result: &res}, nil
}

// Table returns the synthesized table stored at raw for actor.
func (s *Service) Table(raw, actor string) ([]byte, *collection.Resolution, error) {
	path, err := gamedata.NewGamePath(raw)
	if err != nil {
		return nil, nil, err
	}
	blob, res, ok := s.router.Table(path, actor)
	if !ok {
		return nil, nil, nil
	}
	return blob, &res, nil
}
