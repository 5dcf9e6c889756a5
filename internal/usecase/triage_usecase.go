package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"medassist/config"
	"medassist/internal/domain/entity"
	"medassist/internal/service"

	"github.com/sirupsen/logrus"
)

type TriageUsecase interface {
	Assess(ctx context.Context, text string) *entity.SeverityAssessment
}

// triageUsecase is the severity scorer. It is pure and stateless apart from
// the immutable lexicon, so it is safe to call from any number of goroutines.
type triageUsecase struct {
	log     *logrus.Logger
	lexicon *service.Lexicon
	cfg     config.TriageConfig
}

func NewTriageUsecase(log *logrus.Logger, lexicon *service.Lexicon, cfg config.TriageConfig) TriageUsecase {
	if cfg.ScoreCap <= 0 {
		cfg.ScoreCap = 1.0
	}
	return &triageUsecase{
		log:     log,
		lexicon: lexicon,
		cfg:     cfg,
	}
}

// Assess turns a free-text symptom report into a bounded severity signal.
// It never fails: malformed or empty input degrades to NON_URGENT with no
// matches.
func (u *triageUsecase) Assess(ctx context.Context, text string) *entity.SeverityAssessment {
	norm := normalizeText(text)

	matched := u.detect(norm)

	rawScore := 0.0
	forcedCritical := false
	ambulanceOverride := false
	for _, e := range matched {
		// Overlapping phrases ("chest" and "chest pain") each count: weights
		// are additive on purpose, never deduplicated by containment.
		rawScore += e.Weight
		forcedCritical = forcedCritical || e.ForcesCritical
		ambulanceOverride = ambulanceOverride || e.AmbulanceOverride
	}

	score := rawScore / u.cfg.ScoreCap
	if score > 1.0 {
		score = 1.0
	}

	// One forced-critical symptom trumps the aggregate score.
	var level entity.SeverityLevel
	switch {
	case forcedCritical:
		level = entity.SeverityCritical
	case score >= u.cfg.CriticalThreshold:
		level = entity.SeverityCritical
	case score >= u.cfg.UrgentThreshold:
		level = entity.SeverityUrgent
	default:
		level = entity.SeverityNonUrgent
	}

	assessment := &entity.SeverityAssessment{
		MatchedSymptoms:         phrases(matched),
		Score:                   score,
		Level:                   level,
		NeedsAmbulance:          level == entity.SeverityCritical || ambulanceOverride,
		NeedsImmediateAttention: level == entity.SeverityCritical || level == entity.SeverityUrgent,
		Department:              u.department(matched),
		FirstAidTips:            u.firstAid(matched, level),
		Notes:                   buildNotes(matched, level),
	}

	u.log.Debugf("Triage assessment: level=%s score=%.3f symptoms=%d dept=%s",
		assessment.Level, assessment.Score, len(assessment.MatchedSymptoms), assessment.Department)

	return assessment
}

// detect collects every lexicon phrase contained in the normalized text,
// sorted by weight descending then phrase for determinism.
func (u *triageUsecase) detect(norm string) []entity.SymptomEntry {
	if norm == "" {
		return nil
	}
	var matched []entity.SymptomEntry
	for _, e := range u.lexicon.Entries() {
		if strings.Contains(norm, e.Phrase) {
			matched = append(matched, e)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Weight != matched[j].Weight {
			return matched[i].Weight > matched[j].Weight
		}
		return matched[i].Phrase < matched[j].Phrase
	})
	return matched
}

// department groups matched entries by department, sums weights, and picks
// the max; ties break by lexical order of the department name.
func (u *triageUsecase) department(matched []entity.SymptomEntry) string {
	if len(matched) == 0 {
		return service.DepartmentGeneral
	}
	sums := make(map[string]float64)
	for _, e := range matched {
		dept := e.Department
		if dept == "" {
			dept = service.DepartmentGeneral
		}
		sums[dept] += e.Weight
	}
	best := ""
	bestSum := -1.0
	for dept, sum := range sums {
		if sum > bestSum || (sum == bestSum && dept < best) {
			best = dept
			bestSum = sum
		}
	}
	return best
}

// firstAid returns the guidance attached to the single highest-weight match,
// falling back to the level-generic tips.
func (u *triageUsecase) firstAid(matched []entity.SymptomEntry, level entity.SeverityLevel) []string {
	if len(matched) > 0 {
		if tips := u.lexicon.FirstAid(matched[0].Phrase); len(tips) > 0 {
			return tips
		}
	}
	return u.lexicon.GenericFirstAid(level)
}

func buildNotes(matched []entity.SymptomEntry, level entity.SeverityLevel) string {
	if len(matched) == 0 {
		return fmt.Sprintf("Triage assessment: %s | No specific symptoms detected", level)
	}
	return fmt.Sprintf("Triage assessment: %s | Symptoms: %s | Symptom count: %d",
		level, strings.Join(phrases(matched), ", "), len(matched))
}

func phrases(matched []entity.SymptomEntry) []string {
	out := make([]string, 0, len(matched))
	for _, e := range matched {
		out = append(out, e.Phrase)
	}
	return out
}

// normalizeText lowercases, drops apostrophes, maps remaining punctuation to
// spaces, and collapses whitespace, so "Can't breathe!" matches the phrase
// "cant breathe".
func normalizeText(text string) string {
	lower := strings.ToLower(text)
	var b strings.Builder
	b.Grow(len(lower))
	lastSpace := true
	for _, r := range lower {
		switch {
		case r == '\'' || r == '’':
			// drop
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastSpace = false
		default:
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}
