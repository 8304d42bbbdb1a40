package payload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDoc() *Document {
	return &Document{
		Groups: map[string]Group{
			GroupFilters: {Items: []string{"Oil filter", "Air filter"}, Notes: "check housing"},
			GroupFluids: {
				Items:     []string{"Engine oil"},
				EngineOil: &EngineOil{Weights: []string{"15W-40"}, Types: []string{"Synthetic"}},
			},
		},
		IssueText:       "Losing power on hills",
		AdditionalNotes: "Losing power on hills",
		Attachments:     []Attachment{{Name: "engine.jpg", URL: "/uploads/engine.jpg"}},
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	doc := sampleDoc()

	encoded, err := Encode(doc)
	require.NoError(t, err)
	assert.True(t, len(encoded) > len(Prefix))
	assert.Equal(t, Prefix, encoded[:len(Prefix)])

	decoded, ok := Decode(encoded)
	require.True(t, ok)
	assert.Equal(t, doc, decoded)
}

func TestDecodePlainText(t *testing.T) {
	doc, ok := Decode("Check engine light is on.")
	assert.False(t, ok)
	assert.Nil(t, doc)
}

func TestDecodeCorruptPayload(t *testing.T) {
	doc, ok := Decode(Prefix + "{not-valid-json")
	assert.False(t, ok)
	assert.Nil(t, doc)

	doc, ok = Decode(Prefix)
	assert.False(t, ok)
	assert.Nil(t, doc)
}

func TestMergeGroupNotePreservesSiblings(t *testing.T) {
	doc := sampleDoc()
	original, err := Encode(doc)
	require.NoError(t, err)

	merged := MergeGroupNote(doc, GroupFilters, "replaced")
	assert.Equal(t, "replaced", merged.Groups[GroupFilters].Notes)
	assert.Equal(t, doc.Groups[GroupFluids], merged.Groups[GroupFluids])
	assert.Equal(t, doc.IssueText, merged.IssueText)
	assert.Equal(t, doc.Attachments, merged.Attachments)

	// The input document must not change.
	after, err := Encode(doc)
	require.NoError(t, err)
	assert.Equal(t, original, after)
}

func TestMergeGroupNoteCreatesMissingGroup(t *testing.T) {
	merged := MergeGroupNote(&Document{}, GroupGaskets, "reseal next visit")
	assert.Equal(t, "reseal next visit", merged.Groups[GroupGaskets].Notes)
}

func TestMergeGroupCompletion(t *testing.T) {
	doc := sampleDoc()
	merged := MergeGroupCompletion(doc, GroupFluids, true)
	assert.True(t, merged.Groups[GroupFluids].Completed)
	assert.False(t, doc.Groups[GroupFluids].Completed)
	assert.Equal(t, doc.Groups[GroupFluids].Items, merged.Groups[GroupFluids].Items)
}

func TestMergeInternalNotes(t *testing.T) {
	doc := sampleDoc()
	merged := MergeInternalNotes(doc, "", "waiting on parts")
	assert.Equal(t, "waiting on parts", merged.InternalNotes)
	assert.Empty(t, doc.InternalNotes)
	assert.Equal(t, doc.Groups, merged.Groups)
}

func TestMergeInternalNotesSynthesizesLegacyDocument(t *testing.T) {
	merged := MergeInternalNotes(nil, "Brakes squeal when cold.", "inspect pads")
	assert.Equal(t, "inspect pads", merged.InternalNotes)
	assert.Equal(t, "Brakes squeal when cold.", merged.IssueText)
	assert.Equal(t, "Brakes squeal when cold.", merged.AdditionalNotes)
}

func TestCustomerNotePrecedence(t *testing.T) {
	assert.Equal(t, "issue", CustomerNote(&Document{IssueText: "issue", AdditionalNotes: "notes"}, "raw"))
	assert.Equal(t, "notes", CustomerNote(&Document{AdditionalNotes: "notes"}, "raw"))
	assert.Equal(t, "", CustomerNote(&Document{}, "raw"))
	assert.Equal(t, "raw complaint", CustomerNote(nil, "raw complaint"))
}

func TestInvoiceNotes(t *testing.T) {
	doc := sampleDoc()
	doc.InternalNotes = "customer approved estimate"
	notes := InvoiceNotes(doc)
	assert.Equal(t, "customer approved estimate\nFilters: check housing", notes)

	// Without internal or group notes the customer complaint is used.
	assert.Equal(t, "Losing power on hills", InvoiceNotes(&Document{IssueText: "Losing power on hills"}))
	assert.Equal(t, "", InvoiceNotes(nil))
}

func TestSelectedItemsStableOrder(t *testing.T) {
	doc := &Document{Groups: map[string]Group{
		GroupFluids:  {Items: []string{"Coolant"}},
		GroupFilters: {Items: []string{"Oil filter", "DEF filter"}},
		"Electrical": {Items: []string{"Battery"}},
	}}

	items := SelectedItems(doc)
	require.Len(t, items, 4)
	assert.Equal(t, [2]string{GroupFilters, "Oil filter"}, items[0])
	assert.Equal(t, [2]string{GroupFilters, "DEF filter"}, items[1])
	assert.Equal(t, [2]string{GroupFluids, "Coolant"}, items[2])
	assert.Equal(t, [2]string{"Electrical", "Battery"}, items[3])
}
