package substance

import (
	"sort"

	"github.com/turtacn/SubstanceWatch/pkg/errors"
)

// Attribute names the regulatory field an update source writes to.
type Attribute string

const (
	AttrIFRARestriction            Attribute = "ifra_restriction"
	AttrForbiddenInEU              Attribute = "forbidden_in_eu"
	AttrCosmeticRestriction        Attribute = "cosmetic_restriction"
	AttrCLPClassification          Attribute = "clp_classification"
	AttrCIRCStandard               Attribute = "circ_standard"
	AttrEndocrineDisruptor         Attribute = "endocrine_disruptor"
	AttrDeductedEndocrineDisruptor Attribute = "deducted_endocrine_disruptor"
	AttrCoRAPConcern               Attribute = "corap_concern"
	AttrReachIntentionConcern      Attribute = "reach_intention_concern"
	AttrSelfClassified             Attribute = "self_classified"
)

// delta builders: values are the pass's value columns in order.
var attributeDeltas = map[Attribute]func(values []string) Attributes{
	AttrIFRARestriction: func(v []string) Attributes {
		return Attributes{IFRARestriction: at(v, 0), IFRAAmendment: at(v, 1)}
	},
	AttrForbiddenInEU:       func([]string) Attributes { return Attributes{ForbiddenInEU: true} },
	AttrCosmeticRestriction: func(v []string) Attributes { return Attributes{CosmeticRestriction: at(v, 0)} },
	AttrCLPClassification:   func(v []string) Attributes { return Attributes{CLPClassification: at(v, 0)} },
	AttrCIRCStandard:        func(v []string) Attributes { return Attributes{CIRCStandard: at(v, 0)} },
	AttrEndocrineDisruptor:  func([]string) Attributes { return Attributes{EndocrineDisruptor: true} },
	AttrDeductedEndocrineDisruptor: func([]string) Attributes {
		return Attributes{DeductedEndocrineDisruptor: true}
	},
	AttrCoRAPConcern:          func(v []string) Attributes { return Attributes{CoRAPConcern: at(v, 0)} },
	AttrReachIntentionConcern: func(v []string) Attributes { return Attributes{ReachIntentionConcern: at(v, 0)} },
	AttrSelfClassified:        func([]string) Attributes { return Attributes{SelfClassified: true} },
}

func at(v []string, i int) string {
	if i < len(v) {
		return v[i]
	}
	return ""
}

// ParseAttribute validates an attribute name from configuration.
func ParseAttribute(name string) (Attribute, error) {
	a := Attribute(name)
	if _, ok := attributeDeltas[a]; !ok {
		return "", errors.New(errors.ErrCodeUnknownAttribute, "unknown attribute "+name)
	}
	return a, nil
}

// KnownAttributes lists every attribute name, sorted.
func KnownAttributes() []string {
	out := make([]string, 0, len(attributeDeltas))
	for a := range attributeDeltas {
		out = append(out, string(a))
	}
	sort.Strings(out)
	return out
}

// Delta returns the attribute values a row carrying values would write.
func (a Attribute) Delta(values ...string) Attributes {
	build, ok := attributeDeltas[a]
	if !ok {
		return Attributes{}
	}
	return build(values)
}

// Apply writes values into s.  Applying the same row twice leaves s unchanged
// after the first application.
func (a Attribute) Apply(s *Substance, values ...string) {
	s.Attributes.mergeFrom(a.Delta(values...))
}

//Personal.AI order the ending
