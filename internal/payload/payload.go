// Package payload implements the structured service-selection document that
// the public submission form embeds inside a work order's description field.
// A description either starts with the sentinel prefix followed by JSON, or it
// is a plain free-text complaint with no structured data at all.
package payload

import (
	"encoding/json"
	"sort"
	"strings"
)

// Prefix marks a description as carrying an embedded service document.
const Prefix = "SERVICE_JSON:"

// Canonical service-group labels, in display order.
const (
	GroupFilters    = "Filters"
	GroupFluids     = "Fluids"
	GroupGaskets    = "Gaskets / Seals"
	GroupComponents = "Major Components"
)

// GroupOrder fixes the flattening order for known groups. Groups written by
// other form versions sort after these, alphabetically.
var GroupOrder = []string{GroupFilters, GroupFluids, GroupGaskets, GroupComponents}

// Catalog lists the selectable services per group, as offered by the form.
var Catalog = map[string][]string{
	GroupFilters: {"Oil filter", "Fuel filter(s)", "Air filter", "DEF filter"},
	GroupFluids:  {"Engine oil", "Transmission fluid", "Differential fluid(s)", "Coolant"},
	GroupGaskets: {
		"Oil pan gasket",
		"Valve cover gasket",
		"Oil pump tube seals",
		"Turbo gasket / o-ring",
		"Exhaust gasket / seal",
		"Front crank seal + cover",
		"Rear crank seal",
		"Oil pump",
	},
	GroupComponents: {
		"Radiator",
		"CAC (charge air cooler)",
		"Turbo",
		"EGR cooler",
		"Fuel pump",
		"Air compressor",
		"Transmission clutch",
		"Alternator",
		"Water pump",
		"Valve adjustment",
	},
}

// Engine-oil options, only meaningful under the Fluids group.
var (
	EngineOilWeights = []string{"5W-40", "15W-40"}
	EngineOilTypes   = []string{"Blend", "Synthetic"}
)

// EngineOil captures oil weight/type selections.
type EngineOil struct {
	Weights []string `json:"weights"`
	Types   []string `json:"types"`
}

// Group is one category of selected services.
type Group struct {
	Items     []string   `json:"items"`
	Notes     string     `json:"notes,omitempty"`
	Completed bool       `json:"completed,omitempty"`
	EngineOil *EngineOil `json:"engineOil,omitempty"`
}

// Attachment references an uploaded file.
type Attachment struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Document is the embedded service payload. IssueText and AdditionalNotes hold
// the same customer complaint under two historical keys; readers must check
// both (see CustomerNote).
type Document struct {
	Groups          map[string]Group `json:"groups,omitempty"`
	IssueText       string           `json:"issueText,omitempty"`
	AdditionalNotes string           `json:"additionalNotes,omitempty"`
	InternalNotes   string           `json:"internalNotes,omitempty"`
	Attachments     []Attachment     `json:"attachments,omitempty"`
}

// Decode parses the service document out of a description. The second return
// is false when the description is plain text or the embedded JSON is corrupt;
// decoding is best-effort and never fails past this boundary.
func Decode(description string) (*Document, bool) {
	if !strings.HasPrefix(description, Prefix) {
		return nil, false
	}
	var doc Document
	if err := json.Unmarshal([]byte(description[len(Prefix):]), &doc); err != nil {
		return nil, false
	}
	return &doc, true
}

// Encode serialises the document and prepends the sentinel prefix. This is the
// only way a description carrying a payload should ever be written.
func Encode(doc *Document) (string, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	return Prefix + string(raw), nil
}

// Clone deep-copies the document so merges never mutate shared state.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	out := &Document{
		IssueText:       d.IssueText,
		AdditionalNotes: d.AdditionalNotes,
		InternalNotes:   d.InternalNotes,
	}
	if d.Groups != nil {
		out.Groups = make(map[string]Group, len(d.Groups))
		for label, group := range d.Groups {
			out.Groups[label] = group.clone()
		}
	}
	if d.Attachments != nil {
		out.Attachments = append([]Attachment(nil), d.Attachments...)
	}
	return out
}

func (g Group) clone() Group {
	out := g
	if g.Items != nil {
		out.Items = append([]string(nil), g.Items...)
	}
	if g.EngineOil != nil {
		oil := EngineOil{
			Weights: append([]string(nil), g.EngineOil.Weights...),
			Types:   append([]string(nil), g.EngineOil.Types...),
		}
		out.EngineOil = &oil
	}
	return out
}

// MergeGroupNote returns a copy of doc with the group's notes replaced. The
// group is created when absent so staff notes stick even if the form never
// wrote that category.
func MergeGroupNote(doc *Document, label, note string) *Document {
	out := doc.Clone()
	if out == nil {
		out = &Document{}
	}
	if out.Groups == nil {
		out.Groups = make(map[string]Group)
	}
	group := out.Groups[label]
	group.Notes = note
	out.Groups[label] = group
	return out
}

// MergeGroupCompletion returns a copy of doc with the group's completed flag
// replaced.
func MergeGroupCompletion(doc *Document, label string, completed bool) *Document {
	out := doc.Clone()
	if out == nil {
		out = &Document{}
	}
	if out.Groups == nil {
		out.Groups = make(map[string]Group)
	}
	group := out.Groups[label]
	group.Completed = completed
	out.Groups[label] = group
	return out
}

// MergeInternalNotes returns a copy of doc with the staff-authored internal
// notes replaced. When doc is nil (a legacy plain-text description) a minimal
// document is synthesised carrying the previous complaint under both
// historical keys, so annotating an old record never loses the original text.
func MergeInternalNotes(doc *Document, legacyText, note string) *Document {
	out := doc.Clone()
	if out == nil {
		out = &Document{
			IssueText:       legacyText,
			AdditionalNotes: legacyText,
		}
	}
	out.InternalNotes = note
	return out
}

// CustomerNote extracts the customer's complaint. Precedence is issueText,
// then additionalNotes, then the raw description; records written by older
// form versions populate different keys and all must stay readable.
func CustomerNote(doc *Document, rawDescription string) string {
	if doc != nil {
		if text := strings.TrimSpace(doc.IssueText); text != "" {
			return text
		}
		if text := strings.TrimSpace(doc.AdditionalNotes); text != "" {
			return text
		}
		return ""
	}
	return strings.TrimSpace(rawDescription)
}

// InvoiceNotes builds the note block seeded into a new invoice: internal notes
// first, then per-group notes as "Label: note" lines, falling back to the
// customer complaint when nothing else is present.
func InvoiceNotes(doc *Document) string {
	if doc == nil {
		return ""
	}
	var notes []string
	if text := strings.TrimSpace(doc.InternalNotes); text != "" {
		notes = append(notes, text)
	}
	for _, label := range sortedGroupLabels(doc.Groups) {
		if note := strings.TrimSpace(doc.Groups[label].Notes); note != "" {
			notes = append(notes, label+": "+note)
		}
	}
	if len(notes) == 0 {
		if fallback := CustomerNote(doc, ""); fallback != "" {
			notes = append(notes, fallback)
		}
	}
	return strings.Join(notes, "\n")
}

// SelectedItems flattens every selected service across all groups in stable
// group-then-item order.
func SelectedItems(doc *Document) [][2]string {
	if doc == nil {
		return nil
	}
	var out [][2]string
	for _, label := range sortedGroupLabels(doc.Groups) {
		for _, item := range doc.Groups[label].Items {
			out = append(out, [2]string{label, item})
		}
	}
	return out
}

func sortedGroupLabels(groups map[string]Group) []string {
	if len(groups) == 0 {
		return nil
	}
	known := make(map[string]bool, len(GroupOrder))
	var labels []string
	for _, label := range GroupOrder {
		if _, ok := groups[label]; ok {
			labels = append(labels, label)
			known[label] = true
		}
	}
	var extra []string
	for label := range groups {
		if !known[label] {
			extra = append(extra, label)
		}
	}
	sort.Strings(extra)
	return append(labels, extra...)
}
