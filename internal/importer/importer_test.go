package importer

import (
	"context"
	"errors"
	"testing"

	"github.com/knowbot/knowledge-chatbot/internal/knowledge"
)

type fakeStore struct {
	err      error
	inserted []knowledge.Record
}

func (s *fakeStore) Insert(ctx context.Context, r knowledge.Record, sourceFile string) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.inserted = append(s.inserted, r)
	return int64(len(s.inserted)), nil
}

func TestHandle(t *testing.T) {
	tests := []struct {
		name       string
		value      string
		wantInsert bool
	}{
		{
			name:       "valid event",
			value:      `{"category":"hours","question":"what are your hours","answer":"9 to 5"}`,
			wantInsert: true,
		},
		{
			name:       "undecodable event is dropped",
			value:      `not json at all`,
			wantInsert: false,
		},
		{
			name:       "empty question is dropped",
			value:      `{"category":"hours","question":"","answer":"9 to 5"}`,
			wantInsert: false,
		},
		{
			name:       "whitespace answer is dropped",
			value:      `{"category":"hours","question":"what are your hours","answer":"   "}`,
			wantInsert: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{}
			imp := New(store, nil)

			// Invalid events must commit (nil error); replaying them would
			// never succeed.
			if err := imp.Handle(context.Background(), []byte("hours"), []byte(tt.value)); err != nil {
				t.Fatalf("Handle() error: %v", err)
			}
			if got := len(store.inserted) == 1; got != tt.wantInsert {
				t.Errorf("inserted = %d records, wantInsert = %v", len(store.inserted), tt.wantInsert)
			}
		})
	}
}

func TestHandle_StoresEventFields(t *testing.T) {
	store := &fakeStore{}
	imp := New(store, nil)

	value := []byte(`{"category":"hours","question":"what are your hours","answer":"9 to 5","source_file":"faq.csv"}`)
	if err := imp.Handle(context.Background(), []byte("hours"), value); err != nil {
		t.Fatalf("Handle() error: %v", err)
	}
	if len(store.inserted) != 1 {
		t.Fatalf("expected 1 insert, got %d", len(store.inserted))
	}
	rec := store.inserted[0]
	if rec.Category != "hours" || rec.Question != "what are your hours" || rec.Answer != "9 to 5" {
		t.Errorf("unexpected record %+v", rec)
	}
}

func TestHandle_StoreErrorPropagates(t *testing.T) {
	store := &fakeStore{err: errors.New("connection refused")}
	imp := New(store, nil)

	value := []byte(`{"category":"hours","question":"q","answer":"a"}`)
	if err := imp.Handle(context.Background(), nil, value); err == nil {
		t.Error("expected the store error so the event is not committed")
	}
}
