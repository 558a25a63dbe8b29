package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dkravetz/sixtyfix/internal/common"
	"github.com/dkravetz/sixtyfix/internal/dbx"
	"github.com/dkravetz/sixtyfix/internal/logging"
	"github.com/dkravetz/sixtyfix/internal/server/models"
	"github.com/dkravetz/sixtyfix/internal/server/repositories/repomanager"
)

const maxTitleLen = 100

// FixGenerator produces an action plan for a problem text. Satisfied by
// aifix.Generator.
type FixGenerator interface {
	Generate(ctx context.Context, problemText string) string
}

// ItemService implements user-owned item storage. Items carry a JSON object
// payload; the "content" key holds the raw problem text and "ai_fix" holds
// the generated plan. All operations are scoped to the owning user.
type ItemService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	generator   FixGenerator
	logger      logging.Logger
}

// NewItemService constructs an ItemService.
func NewItemService(db *sql.DB, m repomanager.RepositoryManager, generator FixGenerator, logger logging.Logger) *ItemService {
	return &ItemService{
		db:          db,
		repomanager: m,
		generator:   generator,
		logger:      logger.With("module", "items"),
	}
}

func decodePayload(data string) (map[string]any, error) {
	payload := map[string]any{}
	if data == "" {
		return payload, nil
	}
	if err := json.Unmarshal([]byte(data), &payload); err != nil {
		return nil, fmt.Errorf("error decoding payload: %w", err)
	}
	return payload, nil
}

func encodePayload(payload map[string]any) (string, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("error encoding payload: %w", err)
	}
	return string(b), nil
}

// payloadText returns the payload value for key when it is a string.
// Payload values are arbitrary JSON; only content and ai_fix are text.
func payloadText(payload map[string]any, key string) string {
	s, _ := payload[key].(string)
	return s
}

// Save creates or updates an item for userID. The write happens in two
// phases: the payload is persisted as given, then, when the payload carries
// non-empty content, a plan is generated and merged into the stored payload
// without touching unrelated keys. An empty itemID means create.
func (s *ItemService) Save(ctx context.Context, userID, itemID, title string, payload map[string]any) (*models.Item, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = "Untitled"
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return nil, validationError("title must be at most 100 characters")
	}
	if payload == nil {
		payload = map[string]any{}
	}

	data, err := encodePayload(payload)
	if err != nil {
		return nil, common.ErrorInternal
	}

	repo := s.repomanager.Items(s.db)
	item := &models.Item{ID: itemID, UserID: userID, Title: title, Data: data}

	if itemID == "" {
		if item, err = repo.Create(ctx, item); err != nil {
			return nil, common.ErrorInternal
		}
	} else {
		if err := repo.Update(ctx, item); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return nil, common.ErrorNotFound
			}
			return nil, common.ErrorInternal
		}
	}

	if content := payloadText(payload, "content"); strings.TrimSpace(content) != "" {
		if err := s.enrich(ctx, item, content); err != nil {
			return nil, err
		}
	}

	return item, nil
}

// enrich generates a plan for the content and merges it into the stored
// payload inside a transaction, re-reading the row so concurrent edits to
// other keys survive.
func (s *ItemService) enrich(ctx context.Context, item *models.Item, content string) error {
	fix := s.generator.Generate(ctx, content)
	if fix == "" {
		return nil
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repoTx := s.repomanager.Items(tx)
		current, err := repoTx.GetByIDAndOwner(ctx, item.ID, item.UserID)
		if err != nil {
			return err
		}
		payload, err := decodePayload(current.Data)
		if err != nil {
			return err
		}
		payload["ai_fix"] = fix
		data, err := encodePayload(payload)
		if err != nil {
			return err
		}
		current.Data = data
		if err := repoTx.Update(ctx, current); err != nil {
			return err
		}
		item.Data = data
		item.UpdatedAt = current.UpdatedAt
		return nil
	})
	if err != nil {
		s.logger.Error(ctx, "plan enrichment failed", "item_id", item.ID, "error", err.Error())
		return common.ErrorInternal
	}
	return nil
}

// View returns one of the user's items. When the payload has content but no
// plan yet, a plan is generated and persisted before returning, so repeated
// views settle on the same stored state.
func (s *ItemService) View(ctx context.Context, userID, itemID string) (*models.Item, error) {
	repo := s.repomanager.Items(s.db)
	item, err := repo.GetByIDAndOwner(ctx, itemID, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}

	payload, err := decodePayload(item.Data)
	if err != nil {
		return nil, common.ErrorInternal
	}

	// backfill is driven by key absence: a stored ai_fix, even an empty
	// one, is left alone
	if _, ok := payload["ai_fix"]; !ok {
		if content := payloadText(payload, "content"); strings.TrimSpace(content) != "" {
			if err := s.enrich(ctx, item, content); err != nil {
				return nil, err
			}
		}
	}

	return item, nil
}

// List returns all of the user's items, most recently updated first.
func (s *ItemService) List(ctx context.Context, userID string) ([]*models.Item, error) {
	repo := s.repomanager.Items(s.db)
	items, err := repo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, common.ErrorInternal
	}
	return items, nil
}

// Delete removes one of the user's items. Items owned by someone else are
// indistinguishable from missing ones.
func (s *ItemService) Delete(ctx context.Context, userID, itemID string) error {
	repo := s.repomanager.Items(s.db)
	if err := repo.DeleteByIDAndOwner(ctx, itemID, userID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return common.ErrorInternal
	}
	return nil
}
