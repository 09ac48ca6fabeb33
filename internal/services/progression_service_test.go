package services

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"lexica-backend/internal/engine"
	"lexica-backend/internal/models"
)

func TestCompleteSession_Validation(t *testing.T) {
	svc := NewProgressionService(nil, nil, engine.DefaultParams(), 3)

	tests := []struct {
		name      string
		req       models.CompleteSessionRequest
		wantField string
	}{
		{
			name:      "zero questions",
			req:       models.CompleteSessionRequest{QuestionsAnswered: 0, CorrectAnswers: 0},
			wantField: "questions_answered",
		},
		{
			name:      "negative correct",
			req:       models.CompleteSessionRequest{QuestionsAnswered: 5, CorrectAnswers: -1},
			wantField: "correct_answers",
		},
		{
			name:      "correct exceeds answered",
			req:       models.CompleteSessionRequest{QuestionsAnswered: 5, CorrectAnswers: 6},
			wantField: "correct_answers",
		},
		{
			name:      "negative duration",
			req:       models.CompleteSessionRequest{QuestionsAnswered: 5, CorrectAnswers: 3, DurationSeconds: -10},
			wantField: "duration_seconds",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CompleteSession(context.Background(), uuid.New(), tt.req)
			vErr, ok := err.(*ValidationError)
			if !ok {
				t.Fatalf("expected *ValidationError, got %T (%v)", err, err)
			}
			if _, present := vErr.Fields[tt.wantField]; !present {
				t.Errorf("expected field %q in error, got %v", tt.wantField, vErr.Fields)
			}
		})
	}
}
