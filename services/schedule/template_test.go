package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTemplateDefault(t *testing.T) {
	template, err := ParseTemplate("08:00-10:00,10:00-12:00,12:00-14:00,14:00-16:00,16:00-18:00")
	require.NoError(t, err)
	require.Len(t, template, 5)

	assert.Equal(t, Window{Start: 480, End: 600}, template[0])
	assert.Equal(t, Window{Start: 960, End: 1080}, template[4])
	assert.NoError(t, template.Validate())
}

func TestParseTemplateRejectsMalformed(t *testing.T) {
	cases := []string{
		"",
		"08:00",
		"08:00-10:00-12:00",
		"25:00-26:00",
		"10:00-08:00", // end before start
	}
	for _, spec := range cases {
		_, err := ParseTemplate(spec)
		assert.Error(t, err, "spec %q", spec)
	}
}

func TestValidateRejectsOverlapAndDisorder(t *testing.T) {
	overlapping := WindowTemplate{{Start: 480, End: 620}, {Start: 600, End: 720}}
	assert.Error(t, overlapping.Validate())

	unsorted := WindowTemplate{{Start: 600, End: 720}, {Start: 480, End: 600}}
	assert.Error(t, unsorted.Validate())

	gapped := WindowTemplate{{Start: 480, End: 600}, {Start: 720, End: 840}}
	assert.NoError(t, gapped.Validate(), "gaps between windows are allowed")
}

func TestTemplateContains(t *testing.T) {
	template := WindowTemplate{{Start: 480, End: 600}, {Start: 600, End: 720}}

	assert.True(t, template.Contains(Window{Start: 480, End: 600}))
	assert.False(t, template.Contains(Window{Start: 480, End: 620}))
	assert.False(t, template.Contains(Window{Start: 720, End: 840}))
}
