package learning

import (
	"regexp"
	"strings"

	"github.com/khanglvm/paloma/internal/semantic"
)

// adaptationRule transforms a message when its gate matches.
type adaptationRule struct {
	name  string
	when  func(ctx Context, profile *UserProfile, history []UserInteraction) bool
	apply func(message string) string
}

const (
	empathyPrefix      = "Je comprends que cela puisse être frustrant. "
	reformulateHint    = "N'hésitez pas à reformuler votre question si cette réponse ne vous aide pas."
	examplesHint       = "Demandez-moi un exemple concret si besoin."
	navigationHint     = "Vous pouvez aussi passer par le menu principal pour ouvrir le module concerné."
	maxShortSentences  = 2
	maxTrimmedSentence = 3
)

// glossary explains terms to beginners on first use.
var glossary = []struct {
	term  *regexp.Regexp
	gloss string
}{
	{regexp.MustCompile(`\bSYSCOHADA\b`), "SYSCOHADA (le référentiel comptable des pays de l'OHADA)"},
	{regexp.MustCompile(`\bamortissement\b`), "amortissement (la répartition du coût d'un bien sur sa durée d'utilisation)"},
	{regexp.MustCompile(`\blettrage\b`), "lettrage (le rapprochement des factures et de leurs règlements)"},
	{regexp.MustCompile(`\bimmobilisation\b`), "immobilisation (un bien durable de l'entreprise)"},
}

func builtinRules() []adaptationRule {
	return []adaptationRule{
		{
			name: "shorten_for_short_preference",
			when: func(_ Context, p *UserProfile, _ []UserInteraction) bool {
				return p != nil && p.OptimalResponseLength == LengthShort
			},
			apply: func(m string) string { return semantic.FirstSentences(m, maxShortSentences) },
		},
		{
			name: "add_empathy_when_frustrated",
			when: func(ctx Context, _ *UserProfile, history []UserInteraction) bool {
				return ctx.Mood == "frustrated" || lastTwoNegative(history)
			},
			apply: func(m string) string {
				if strings.HasPrefix(m, empathyPrefix) {
					return m
				}
				return empathyPrefix + m
			},
		},
		{
			name: "simplify_for_beginner",
			when: func(_ Context, p *UserProfile, _ []UserInteraction) bool {
				return p != nil && p.ExpertiseLevel == ExpertiseBeginner
			},
			apply: simplifyTerms,
		},
	}
}

// avoidanceRule builds the avoid_<factor> rule for a failing module/intent.
func avoidanceRule(factor, module, intent string) adaptationRule {
	r := adaptationRule{
		name: "avoid_" + factor,
		when: func(ctx Context, _ *UserProfile, _ []UserInteraction) bool {
			if module != "" && ctx.Module != module {
				return false
			}
			return intent == "" || ctx.Intent == intent
		},
	}

	switch factor {
	case FactorTooLong:
		r.apply = func(m string) string { return semantic.FirstSentences(m, maxTrimmedSentence) }
	case FactorTooTechnical:
		r.apply = simplifyTerms
	case FactorMissingExamples:
		r.apply = func(m string) string { return appendOnce(m, examplesHint) }
	case FactorMissingNavigation:
		r.apply = func(m string) string { return appendOnce(m, navigationHint) }
	default:
		r.apply = func(m string) string { return m }
	}
	return r
}

// installRuleLocked adds r, replacing a rule with the same name.
func (s *System) installRuleLocked(r adaptationRule) {
	for i := range s.rules {
		if s.rules[i].name == r.name {
			s.rules[i] = r
			return
		}
	}
	s.rules = append(s.rules, r)
}

// Rules returns the names of the registered adaptation rules.
func (s *System) Rules() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, len(s.rules))
	for i, r := range s.rules {
		names[i] = r.name
	}
	return names
}

// AdaptResponseInRealTime applies relevant patterns and then every matching
// adaptation rule to message. history is the recent interaction log, oldest
// first. The message is returned unchanged while learning is disabled.
func (s *System) AdaptResponseInRealTime(message string, ctx *Context, history []UserInteraction) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.enabled {
		return message
	}

	c := ctx.value()
	profile := s.profiles[c.userID()]

	for _, p := range s.patterns {
		if !s.matcher(p, c) {
			continue
		}
		message = applyPattern(message, p, c)
	}

	for _, r := range s.rules {
		if r.when(c, profile, history) {
			message = r.apply(message)
		}
	}

	return message
}

func applyPattern(message string, p LearningPattern, ctx Context) string {
	switch p.Type {
	case PatternContent:
		content := p.Pattern.Content
		if content == nil || content.Intent != ctx.Intent || p.Effectiveness < successThreshold {
			return message
		}
		if !content.HasEmoji {
			message = semantic.StripEmoji(message)
		}
		if content.LengthBucket == LengthShort {
			message = semantic.FirstSentences(message, maxShortSentences)
		}
	case PatternFailure:
		outcome := p.Pattern.Outcome
		if outcome == nil || outcome.Intent != ctx.Intent {
			return message
		}
		message = appendOnce(message, reformulateHint)
	}
	return message
}

func lastTwoNegative(history []UserInteraction) bool {
	if len(history) < 2 {
		return false
	}
	for _, in := range history[len(history)-2:] {
		sat, ok := in.satisfaction()
		negative := in.UserFeedback == FeedbackNegative || (ok && sat < failureThreshold)
		if !negative {
			return false
		}
	}
	return true
}

func appendOnce(m, suffix string) string {
	if strings.Contains(m, suffix) {
		return m
	}
	if m == "" {
		return suffix
	}
	return m + "\n\n" + suffix
}

// simplifyTerms glosses the first occurrence of each glossary term.
func simplifyTerms(m string) string {
	for _, g := range glossary {
		if strings.Contains(m, g.gloss) {
			continue
		}
		if loc := g.term.FindStringIndex(m); loc != nil {
			m = m[:loc[0]] + g.gloss + m[loc[1]:]
		}
	}
	return m
}
