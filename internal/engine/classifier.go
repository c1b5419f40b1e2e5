package engine

import (
	"fmt"
	"strings"

	"github.com/yenhunghuang/license-compliance-copilot/internal/graph"
)

// Classification is the policy category of a license or expression.
// DualLicense marks a choice expression whose options straddle the
// copyleft/non-copyleft boundary; the category then reflects the least
// restrictive option pending an explicit choice.
type Classification struct {
	Category       graph.Category `json:"category"`
	DualLicense    bool           `json:"dual_license,omitempty"`
	RequiresReview bool           `json:"requires_review,omitempty"`
	Reason         string         `json:"reason,omitempty"`
}

// Tag returns the display tag: the category, or "dual-license" for a
// straddling choice expression.
func (c Classification) Tag() string {
	if c.DualLicense {
		return "dual-license"
	}
	return string(c.Category)
}

// ClassifyLicense returns the category of a single license id.
func (e *Engine) ClassifyLicense(licenseID string) Classification {
	canonical := e.Canonicalize(licenseID)
	return e.classifySingle(canonical)
}

func (e *Engine) classifySingle(lic CanonicalLicense) Classification {
	if !lic.Known {
		return Classification{
			Category:       graph.CategoryUnknown,
			RequiresReview: true,
			Reason:         fmt.Sprintf("license %q is not in the knowledge graph", lic.Original),
		}
	}
	node, ok := e.store.GetLicense(lic.ID)
	if !ok {
		return Classification{
			Category:       graph.CategoryUnknown,
			RequiresReview: true,
			Reason:         fmt.Sprintf("license %q is not in the knowledge graph", lic.ID),
		}
	}
	return Classification{Category: node.Category}
}

// ClassifyExpression classifies a parsed expression. OR picks the least
// restrictive option unless the options straddle the copyleft boundary, in
// which case the result is tagged DualLicense. AND picks the most
// restrictive operand. Any Unknown operand makes the whole expression
// Unknown.
func (e *Engine) ClassifyExpression(expr *Expression) Classification {
	switch expr.Kind {
	case ExprSingle:
		return e.classifySingle(expr.License)
	case ExprAnd:
		return e.classifyConjunction(expr)
	case ExprOr:
		return e.classifyChoice(expr)
	default:
		return Classification{Category: graph.CategoryUnknown, RequiresReview: true, Reason: "unrecognized expression"}
	}
}

// Classify parses and classifies a raw expression string in one step.
// Malformed expressions classify as Unknown with the parse failure as the
// reason.
func (e *Engine) Classify(raw string) Classification {
	expr, err := e.ParseExpression(raw)
	if err != nil {
		return Classification{
			Category:       graph.CategoryUnknown,
			RequiresReview: true,
			Reason:         err.Error(),
		}
	}
	return e.ClassifyExpression(expr)
}

func (e *Engine) classifyConjunction(expr *Expression) Classification {
	result := Classification{Category: graph.CategoryPublicDomain}
	copyleft := false

	for _, op := range expr.Operands {
		cls := e.ClassifyExpression(op)
		if cls.Category == graph.CategoryUnknown {
			cls.RequiresReview = true
			return cls
		}
		if cls.Category.RiskLevel() > result.Category.RiskLevel() {
			result.Category = cls.Category
		}
		if cls.Category.IsCopyleft() || cls.DualLicense {
			copyleft = true
		}
	}

	if copyleft {
		result.RequiresReview = true
		result.Reason = "conjunction includes a copyleft license; all terms apply simultaneously"
	}
	return result
}

func (e *Engine) classifyChoice(expr *Expression) Classification {
	var categories []graph.Category
	anyCopyleft, anyNonCopyleft := false, false

	for _, op := range expr.Operands {
		cls := e.ClassifyExpression(op)
		if cls.Category == graph.CategoryUnknown {
			cls.RequiresReview = true
			return cls
		}
		categories = append(categories, cls.Category)
		if cls.Category.IsCopyleft() || cls.DualLicense {
			anyCopyleft = true
		} else {
			anyNonCopyleft = true
		}
	}

	least := categories[0]
	for _, c := range categories[1:] {
		if c.RiskLevel() < least.RiskLevel() {
			least = c
		}
	}

	if anyCopyleft && anyNonCopyleft {
		return Classification{
			Category:       least,
			DualLicense:    true,
			RequiresReview: true,
			Reason:         "choice between copyleft and non-copyleft terms requires an explicit selection",
		}
	}
	return Classification{Category: least}
}

// RequiresReview returns a non-empty reason when the expression needs a
// human decision: it mentions an unknown license, an OR straddles the
// copyleft boundary, or an AND includes a copyleft operand.
func (e *Engine) RequiresReview(raw string) string {
	expr, err := e.ParseExpression(raw)
	if err != nil {
		return err.Error()
	}

	if expr.ContainsUnknown() {
		var unknown []string
		expr.walk(func(lic CanonicalLicense) {
			if !lic.Known {
				unknown = append(unknown, lic.Original)
			}
		})
		return fmt.Sprintf("expression mentions unknown licenses: %s", strings.Join(unknown, ", "))
	}

	cls := e.ClassifyExpression(expr)
	if cls.DualLicense {
		return "choice between copyleft and non-copyleft terms requires an explicit selection"
	}
	if cls.RequiresReview {
		return cls.Reason
	}
	return ""
}
