package generator

import (
	"context"
	"errors"
	"testing"

	"github.com/policy-play/backend/internal/models"
)

// stubClient returns a fixed response, or a fixed error.
type stubClient struct {
	content string
	err     error
	lastReq GenerateRequest
}

func (s *stubClient) Generate(ctx context.Context, req GenerateRequest) (*LLMResponse, error) {
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return &LLMResponse{Content: s.content, PromptTokens: 10, OutputTokens: 10}, nil
}

func testGenerator(content string) (*Generator, *stubClient) {
	stub := &stubClient{content: content}
	return NewGeneratorWithClient(stub, "stub"), stub
}

func TestStructurePolicyNormalization(t *testing.T) {
	tests := []struct {
		name      string
		response  string
		wantRules int
		wantTitle bool
	}{
		{
			name:      "full response",
			response:  `{"title":"T","summary":"S","rules":["r1","r2"],"definitions":["d: x"]}`,
			wantRules: 2,
			wantTitle: true,
		},
		{
			name:      "null and missing fields",
			response:  `{"title":null,"rules":null}`,
			wantRules: 0,
			wantTitle: false,
		},
		{
			name:      "non-list field coerced to empty",
			response:  `{"rules":"not a list","exceptions":42}`,
			wantRules: 0,
			wantTitle: false,
		},
		{
			name:      "mixed-type list keeps strings",
			response:  `{"rules":["r1",7,null,"r2"]}`,
			wantRules: 2,
			wantTitle: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, _ := testGenerator(tt.response)
			p, err := g.StructurePolicy(context.Background(), "raw policy text")
			if err != nil {
				t.Fatalf("StructurePolicy() error = %v", err)
			}
			if len(p.Rules) != tt.wantRules {
				t.Errorf("got %d rules, want %d", len(p.Rules), tt.wantRules)
			}
			if (p.Title != nil) != tt.wantTitle {
				t.Errorf("title presence = %v, want %v", p.Title != nil, tt.wantTitle)
			}
			// List fields must never be nil after normalization.
			for name, list := range map[string][]string{
				"rules": p.Rules, "roles": p.Roles, "clauses": p.Clauses,
				"definitions": p.Definitions, "exceptions": p.Exceptions,
				"risks": p.Risks, "sections": p.Sections,
			} {
				if list == nil {
					t.Errorf("%s is nil after normalization", name)
				}
			}
			if p.RawText != "raw policy text" {
				t.Errorf("raw text not preserved: %q", p.RawText)
			}
		})
	}
}

func TestStructurePolicyEmptyInput(t *testing.T) {
	g, stub := testGenerator(`{}`)
	_, err := g.StructurePolicy(context.Background(), "   ")
	if !errors.Is(err, models.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if stub.lastReq.Prompt != "" {
		t.Error("LLM was called for empty input")
	}
}

func TestStructurePolicyUnparseable(t *testing.T) {
	g, _ := testGenerator("sorry, I can't help with that")
	_, err := g.StructurePolicy(context.Background(), "some policy")
	var fe *FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FormatError, got %v", err)
	}
}

func TestStructurePolicyTemperature(t *testing.T) {
	g, stub := testGenerator(`{}`)
	if _, err := g.StructurePolicy(context.Background(), "text"); err != nil {
		t.Fatalf("StructurePolicy() error = %v", err)
	}
	if stub.lastReq.Temperature != 0.3 {
		t.Errorf("structuring temperature = %v, want 0.3", stub.lastReq.Temperature)
	}
}
