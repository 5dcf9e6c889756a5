package service

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"medassist/internal/domain/entity"
)

// DepartmentGeneral is the fallback when no matched symptom carries a
// department affinity.
const DepartmentGeneral = "General Medicine"

// Lexicon is the immutable symptom table the severity scorer runs against.
// It is built once at process start; scoring stays deterministic because
// nothing can mutate it afterwards.
type Lexicon struct {
	entries  map[string]entity.SymptomEntry
	firstAid map[string][]string
	generic  map[entity.SeverityLevel][]string
}

// NewLexicon builds a lexicon from the given entries. Phrases are lowercased;
// duplicates and out-of-range weights are rejected.
func NewLexicon(entries []entity.SymptomEntry, firstAid map[string][]string) (*Lexicon, error) {
	lex := &Lexicon{
		entries:  make(map[string]entity.SymptomEntry, len(entries)),
		firstAid: make(map[string][]string, len(firstAid)),
		generic:  genericFirstAid(),
	}
	for _, e := range entries {
		phrase := strings.ToLower(strings.TrimSpace(e.Phrase))
		if phrase == "" {
			return nil, fmt.Errorf("lexicon entry with empty phrase")
		}
		if e.Weight <= 0 || e.Weight > 1 {
			return nil, fmt.Errorf("lexicon entry %q has weight %v outside (0,1]", phrase, e.Weight)
		}
		if _, dup := lex.entries[phrase]; dup {
			return nil, fmt.Errorf("duplicate lexicon phrase %q", phrase)
		}
		e.Phrase = phrase
		lex.entries[phrase] = e
	}
	for phrase, tips := range firstAid {
		lex.firstAid[strings.ToLower(phrase)] = tips
	}
	return lex, nil
}

// LoadLexicon returns the built-in table, or the JSON file at path when set.
func LoadLexicon(path string) (*Lexicon, error) {
	if path == "" {
		return NewLexicon(defaultEntries(), defaultFirstAid())
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lexicon file: %w", err)
	}
	var file struct {
		Entries  []entity.SymptomEntry `json:"entries"`
		FirstAid map[string][]string   `json:"first_aid"`
	}
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse lexicon file: %w", err)
	}
	return NewLexicon(file.Entries, file.FirstAid)
}

// Entries returns every entry. The returned slice is a copy.
func (l *Lexicon) Entries() []entity.SymptomEntry {
	out := make([]entity.SymptomEntry, 0, len(l.entries))
	for _, e := range l.entries {
		out = append(out, e)
	}
	return out
}

// FirstAid returns the guidance attached to a phrase, or nil.
func (l *Lexicon) FirstAid(phrase string) []string {
	return l.firstAid[phrase]
}

// GenericFirstAid returns the level-generic guidance fallback.
func (l *Lexicon) GenericFirstAid(level entity.SeverityLevel) []string {
	return l.generic[level]
}

func genericFirstAid() map[entity.SeverityLevel][]string {
	return map[entity.SeverityLevel][]string{
		entity.SeverityCritical: {
			"Call emergency services immediately",
			"Do not move the patient unless in immediate danger",
			"Monitor consciousness and breathing",
		},
		entity.SeverityUrgent: {
			"Seek medical attention as soon as possible",
			"Keep the patient calm and still",
			"Note when symptoms started and how they change",
		},
		entity.SeverityNonUrgent: {
			"Rest and stay hydrated",
			"Monitor symptoms and note any changes",
			"Seek medical attention if symptoms worsen",
		},
	}
}
