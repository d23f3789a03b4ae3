package directory

import "context"

// mockStore implements the consumer interface for tests.
type mockStore struct {
	hsetFn    func(ctx context.Context, key string, fields map[string]string) error
	hgetAllFn func(ctx context.Context, key string) (map[string]string, error)
}

func (m *mockStore) HSet(ctx context.Context, key string, fields map[string]string) error {
	if m.hsetFn != nil {
		return m.hsetFn(ctx, key, fields)
	}
	return nil
}

func (m *mockStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	if m.hgetAllFn != nil {
		return m.hgetAllFn(ctx, key)
	}
	return map[string]string{}, nil
}

// hashes returns a mock backed by fixed hashes.
func hashes(data map[string]map[string]string) *mockStore {
	return &mockStore{
		hgetAllFn: func(_ context.Context, key string) (map[string]string, error) {
			if h, ok := data[key]; ok {
				return h, nil
			}
			return map[string]string{}, nil
		},
	}
}
