package bridge

import (
	"RevBridge/internal/config"
	"RevBridge/internal/serviceiface"
	"RevBridge/internal/store"
)

type BridgeService struct {
	config *config.Config
	store  *store.Store
}

func NewBridgeService(cfg *config.Config, st *store.Store) serviceiface.Service {
	return &BridgeService{config: cfg, store: st}
}

func (s *BridgeService) Name() string {
	return "bridge"
}

func (s *BridgeService) Start() error {
	go StartBridgeService(s.config, s.store)
	return nil
}

func (s *BridgeService) Stop() error {
	// Implement stop logic if needed
	return nil
}
