package board

import "context"

// Service is the board façade. It validates patches and delegates every
// call to the active store; it holds no backend-specific logic.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) ReadBoard(ctx context.Context) (Board, error) {
	tasks, err := s.store.ReadAll(ctx)
	if err != nil {
		return Board{}, err
	}
	if tasks == nil {
		tasks = []Task{}
	}
	return Board{Tasks: tasks}, nil
}

func (s *Service) UpsertTask(ctx context.Context, patch TaskPatch) (Task, error) {
	if err := patch.Validate(); err != nil {
		return Task{}, err
	}
	return s.store.Upsert(ctx, patch)
}

func (s *Service) DeleteTask(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

// StorageMode names the active backend for display, never for branching.
func (s *Service) StorageMode() string {
	return s.store.Mode()
}
