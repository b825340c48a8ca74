package services

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"deckhand/internal/apkg"
	"deckhand/internal/entities"
)

// ImportService turns parsed deck archives into persisted entities and
// keeps import-session bookkeeping up to date.
type ImportService struct {
	store  DeckStore
	parser *apkg.Parser
}

func NewImportService(store DeckStore) *ImportService {
	return &ImportService{
		store:  store,
		parser: apkg.NewParser(),
	}
}

// ImportArchive parses the archive at path and persists the result. When a
// session is supplied its status and counters are updated as the import
// progresses; a parse failure marks it failed and returns the error.
func (s *ImportService) ImportArchive(path, sourceFile, uploadKey string, extraTags []string, session *entities.ImportSession) (ImportResult, error) {
	if session != nil {
		session.Status = entities.ImportStatusRunning
		if err := s.store.UpdateImportSession(session); err != nil {
			return ImportResult{}, fmt.Errorf("failed to update import session: %w", err)
		}
	}

	parsed, err := s.parser.Parse(path)
	if err != nil {
		s.failSession(session, err)
		return ImportResult{}, err
	}

	result, err := s.ImportParsedDeck(parsed, sourceFile, uploadKey, extraTags)
	if err != nil {
		s.failSession(session, err)
		return result, err
	}

	if session != nil {
		now := time.Now()
		session.Status = entities.ImportStatusCompleted
		session.DeckID = &result.DeckID
		session.TotalCards = result.TotalCards
		session.ImportedCards = result.ImportedCards
		session.SkippedCards = result.SkippedCards
		session.Errors = encodeErrors(result.Errors)
		session.CompletedAt = &now
		if err := s.store.UpdateImportSession(session); err != nil {
			return result, fmt.Errorf("failed to update import session: %w", err)
		}
	}
	return result, nil
}

// ImportParsedDeck converts an already-parsed deck into entities and saves
// it. Cards that cannot be converted are skipped and reported, never fatal.
func (s *ImportService) ImportParsedDeck(parsed *apkg.ParsedDeck, sourceFile, uploadKey string, extraTags []string) (ImportResult, error) {
	deck := &entities.Deck{
		Name:        parsed.Name,
		Description: parsed.Description,
		SourceFile:  sourceFile,
		UploadKey:   uploadKey,
	}

	result := ImportResult{
		DeckName:   parsed.Name,
		TotalCards: len(parsed.Cards),
		NoteTypes:  len(parsed.NoteTypes),
	}

	tagCache := make(map[string]*entities.Tag)
	for _, parsedCard := range parsed.Cards {
		card, err := s.toCardEntity(parsedCard, extraTags, tagCache)
		if err != nil {
			result.SkippedCards++
			result.Errors = append(result.Errors, fmt.Sprintf("card %s: %v", parsedCard.CardID, err))
			continue
		}
		deck.Cards = append(deck.Cards, card)
		result.ImportedCards++
	}

	for _, nt := range parsed.NoteTypes {
		noteType, err := toNoteTypeEntity(nt)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("note type %s: %v", nt.ID, err))
			continue
		}
		deck.NoteTypes = append(deck.NoteTypes, noteType)
	}

	if err := s.store.SaveDeck(deck); err != nil {
		return result, fmt.Errorf("failed to save deck %q: %w", deck.Name, err)
	}
	result.DeckID = deck.ID

	log.Printf("Imported deck %q: %d/%d cards, %d note types",
		deck.Name, result.ImportedCards, result.TotalCards, result.NoteTypes)
	return result, nil
}

func (s *ImportService) toCardEntity(parsedCard apkg.ParsedCard, extraTags []string, tagCache map[string]*entities.Tag) (entities.Card, error) {
	fieldsJSON, err := json.Marshal(parsedCard.Fields)
	if err != nil {
		return entities.Card{}, fmt.Errorf("failed to encode fields: %w", err)
	}

	card := entities.Card{
		AnkiNoteID: parsedCard.NoteID,
		AnkiCardID: parsedCard.CardID,
		Front:      parsedCard.Front,
		Back:       parsedCard.Back,
		NoteType:   parsedCard.NoteType,
		DeckName:   parsedCard.DeckName,
		FieldsJSON: string(fieldsJSON),
		Due:        parsedCard.Due,
		Interval:   parsedCard.Interval,
		EaseFactor: parsedCard.EaseFactor,
		Reviews:    parsedCard.Reviews,
		Lapses:     parsedCard.Lapses,
	}

	for _, name := range mergeTags(parsedCard.Tags, extraTags) {
		tag, ok := tagCache[name]
		if !ok {
			tag, err = s.store.GetOrCreateTag(name)
			if err != nil {
				return entities.Card{}, fmt.Errorf("failed to resolve tag %q: %w", name, err)
			}
			tagCache[name] = tag
		}
		card.Tags = append(card.Tags, *tag)
	}
	return card, nil
}

func toNoteTypeEntity(nt apkg.NoteType) (entities.NoteType, error) {
	fieldsJSON, err := json.Marshal(nt.Fields)
	if err != nil {
		return entities.NoteType{}, fmt.Errorf("failed to encode fields: %w", err)
	}
	templatesJSON, err := json.Marshal(nt.Templates)
	if err != nil {
		return entities.NoteType{}, fmt.Errorf("failed to encode templates: %w", err)
	}

	return entities.NoteType{
		AnkiID:        nt.ID,
		Name:          nt.Name,
		FieldsJSON:    string(fieldsJSON),
		TemplatesJSON: string(templatesJSON),
		CSS:           nt.CSS,
	}, nil
}

// mergeTags combines card tags with import-wide extra tags, deduplicated,
// card tags first.
func mergeTags(cardTags, extraTags []string) []string {
	seen := make(map[string]bool)
	merged := make([]string, 0, len(cardTags)+len(extraTags))
	for _, name := range cardTags {
		if name != "" && !seen[name] {
			seen[name] = true
			merged = append(merged, name)
		}
	}
	for _, name := range extraTags {
		if name != "" && !seen[name] {
			seen[name] = true
			merged = append(merged, name)
		}
	}
	return merged
}

func (s *ImportService) failSession(session *entities.ImportSession, cause error) {
	if session == nil {
		return
	}
	now := time.Now()
	session.Status = entities.ImportStatusFailed
	session.Errors = encodeErrors([]string{cause.Error()})
	session.CompletedAt = &now
	if err := s.store.UpdateImportSession(session); err != nil {
		log.Printf("Failed to mark import session %d failed: %v", session.ID, err)
	}
}

func encodeErrors(messages []string) string {
	if len(messages) == 0 {
		return ""
	}
	encoded, err := json.Marshal(messages)
	if err != nil {
		return ""
	}
	return string(encoded)
}
