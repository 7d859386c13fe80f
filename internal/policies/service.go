package policies

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/policy-play/backend/internal/generator"
	"github.com/policy-play/backend/internal/models"
)

type Service struct {
	store     *Store
	generator *generator.Generator
	uploadDir string
}

func NewService(store *Store, gen *generator.Generator) *Service {
	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = os.TempDir()
	}
	return &Service{store: store, generator: gen, uploadDir: uploadDir}
}

// Upload runs the full pipeline: persist the file under a fresh name,
// extract its text, structure it with the LLM, store the result.
func (s *Service) Upload(ctx context.Context, filename string, content io.Reader, uploadedBy int64) (*models.Policy, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != ".pdf" && ext != ".docx" {
		return nil, fmt.Errorf("upload %q: %w", filename, models.ErrInvalidInput)
	}

	// Uploads get uuid names so concurrent uploads of the same file
	// cannot collide on disk.
	stored := filepath.Join(s.uploadDir, uuid.NewString()+ext)
	f, err := os.Create(stored)
	if err != nil {
		return nil, fmt.Errorf("save upload: %w", err)
	}
	_, copyErr := io.Copy(f, content)
	closeErr := f.Close()
	defer os.Remove(stored)
	if copyErr != nil {
		return nil, fmt.Errorf("save upload: %w", copyErr)
	}
	if closeErr != nil {
		return nil, fmt.Errorf("save upload: %w", closeErr)
	}

	text, err := ExtractText(stored)
	if err != nil {
		return nil, fmt.Errorf("extract %q: %w", filename, err)
	}

	structured, err := s.generator.StructurePolicy(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("structure %q: %w", filename, err)
	}

	policy, err := s.store.Create(structured, filename, uploadedBy)
	if err != nil {
		return nil, err
	}

	log.Printf("[policies] structured %q as policy %d (%d rules, %d definitions)",
		filename, policy.ID, len(structured.Rules), len(structured.Definitions))
	return policy, nil
}

func (s *Service) Get(id int64) (*models.Policy, error) {
	return s.store.GetByID(id)
}

func (s *Service) List() ([]models.PolicySummary, error) {
	return s.store.List()
}
