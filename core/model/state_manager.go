package model

import (
	"sync"

	"github.com/YuminosukeSato/treelab/pkg/errors"
)

// StateManager はモデルの学習状態をスレッドセーフに管理する。
// 推定器は埋め込みではなくフィールドとして保持する。
type StateManager struct {
	Fitted bool // gobエンコードのため公開
	mu     sync.RWMutex

	// 学習時に観測した形状（gobエンコードのため公開）
	NFeatures int
	NSamples  int
}

// NewStateManager は未学習状態のStateManagerを作成する
func NewStateManager() *StateManager {
	return &StateManager{}
}

// IsFitted はモデルが学習済みかどうかを返す
func (s *StateManager) IsFitted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Fitted
}

// SetFitted は学習済み状態と学習時の形状をまとめて記録する
func (s *StateManager) SetFitted(nFeatures, nSamples int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Fitted = true
	s.NFeatures = nFeatures
	s.NSamples = nSamples
}

// Reset は学習状態を初期化する
func (s *StateManager) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Fitted = false
	s.NFeatures = 0
	s.NSamples = 0
}

// GetDimensions は学習時の特徴量数とサンプル数を返す
func (s *StateManager) GetDimensions() (nFeatures, nSamples int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.NFeatures, s.NSamples
}

// RequireFitted は未学習の場合に NotFittedError を返す
func (s *StateManager) RequireFitted(modelName, method string) error {
	if !s.IsFitted() {
		return errors.NewNotFittedError(modelName, method)
	}
	return nil
}

// RequireFeatures は未学習、または入力の特徴量数が学習時と異なる場合にエラーを返す
func (s *StateManager) RequireFeatures(modelName, method string, got int) error {
	if err := s.RequireFitted(modelName, method); err != nil {
		return err
	}
	nFeatures, _ := s.GetDimensions()
	if got != nFeatures {
		return errors.NewDimensionError(method, nFeatures, got, 1)
	}
	return nil
}
