package classify

import (
	"log/slog"
	"math"
	"strings"

	"github.com/dianabombi/student-advisor-sub000/constants"
)

// Config holds the confidence-boost heuristics. These multipliers are
// empirically chosen, kept configurable rather than hard-coded.
type Config struct {
	DecisiveWinBoost float64 // applied when the top score doubles the runner-up, default 1.2
	FilenameBoost    float64 // applied when a filename hint agrees, default 1.3
	MetadataBoost    float64 // applied when a caller metadata hint agrees, default 1.2
}

func (c Config) withDefaults() Config {
	if c.DecisiveWinBoost <= 0 {
		c.DecisiveWinBoost = 1.2
	}
	if c.FilenameBoost <= 0 {
		c.FilenameBoost = 1.3
	}
	if c.MetadataBoost <= 0 {
		c.MetadataBoost = 1.2
	}
	return c
}

// Hints is optional caller-supplied context that may raise confidence when
// it agrees with the keyword-based prediction. Hints never change the
// predicted type.
type Hints struct {
	Filename     string
	DocumentType string
}

// Result is the outcome of classifying document text.
type Result struct {
	Type       constants.DocumentType             `json:"type"`
	Confidence float64                            `json:"confidence"` // always in [0,1]
	Method     string                             `json:"method"`     // "keyword" | "none"
	Scores     map[constants.DocumentType]float64 `json:"scores,omitempty"`
}

// Classifier maps OCR text to one taxonomy entry with a confidence score.
type Classifier struct {
	tax    *Taxonomy
	cfg    Config
	logger *slog.Logger
}

func NewClassifier(tax *Taxonomy, cfg Config, logger *slog.Logger) *Classifier {
	if tax == nil {
		tax = DefaultTaxonomy()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{tax: tax, cfg: cfg.withDefaults(), logger: logger}
}

// Classify scores the text against every taxonomy entry. Each keyword that
// occurs contributes weight*(1+ln(1+count)) to its type; the winner's score
// is normalized against the theoretical maximum of the highest-weighted
// type. When nothing matches, the fallback type is returned with
// confidence exactly 0.
func (c *Classifier) Classify(text string, hints Hints) Result {
	lower := strings.ToLower(text)

	scores := make(map[constants.DocumentType]float64, len(c.tax.types))
	var top, second float64
	var topType constants.DocumentType
	for i := range c.tax.types {
		ts := &c.tax.types[i]
		var score float64
		for _, pat := range ts.patterns {
			if count := len(pat.FindAllStringIndex(lower, -1)); count > 0 {
				score += ts.Weight * (1 + math.Log(1+float64(count)))
			}
		}
		scores[ts.Tag] = score
		if score > top {
			second = top
			top = score
			topType = ts.Tag
		} else if score > second {
			second = score
		}
	}

	if top == 0 {
		return Result{Type: constants.Unclassified, Confidence: 0.0, Method: "none", Scores: scores}
	}

	confidence := top / c.maxPossibleScore()
	if top > 2*second {
		confidence *= c.cfg.DecisiveWinBoost
	}
	confidence = c.applyHints(confidence, topType, hints)
	if confidence > 1.0 {
		confidence = 1.0
	}

	c.logger.Debug("classified document", "type", topType, "confidence", confidence, "top_score", top)
	return Result{Type: topType, Confidence: confidence, Method: "keyword", Scores: scores}
}

// maxPossibleScore is the score of the highest-weighted type if every one of
// its keywords matched exactly once.
func (c *Classifier) maxPossibleScore() float64 {
	perMatch := 1 + math.Log(2)
	var max float64
	for i := range c.tax.types {
		ts := &c.tax.types[i]
		if possible := ts.Weight * float64(len(ts.Keywords)) * perMatch; possible > max {
			max = possible
		}
	}
	return max
}

func (c *Classifier) applyHints(confidence float64, predicted constants.DocumentType, hints Hints) float64 {
	if hints.Filename != "" {
		if hinted, ok := filenameHint(hints.Filename); ok && hinted == predicted {
			confidence *= c.cfg.FilenameBoost
		}
	}
	if hints.DocumentType != "" {
		if hinted, ok := constants.Canonicalize(hints.DocumentType); ok && hinted == predicted {
			confidence *= c.cfg.MetadataBoost
		}
	}
	return confidence
}

// filenameHint scans filename tokens for a recognizable type label.
func filenameHint(filename string) (constants.DocumentType, bool) {
	base := strings.ToLower(filename)
	if i := strings.LastIndexByte(base, '.'); i > 0 {
		base = base[:i]
	}
	tokens := strings.FieldsFunc(base, func(r rune) bool {
		return r == '_' || r == '-' || r == ' ' || r == '.'
	})
	// try progressively longer token windows so multi-word labels
	// ("power of attorney") are recognized
	for width := 1; width <= 3; width++ {
		for i := 0; i+width <= len(tokens); i++ {
			label := strings.Join(tokens[i:i+width], " ")
			if dt, ok := constants.Canonicalize(label); ok {
				return dt, true
			}
		}
	}
	return constants.Unclassified, false
}
