package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/field-report/internal/domain/entity"
)

// scriptedPrompter answers prompts in order
type scriptedPrompter struct {
	inputs  []string
	selects []int
	areas   []string
	asked   []string
}

func (p *scriptedPrompter) Input(message, def string, validate func(string) error) (string, error) {
	p.asked = append(p.asked, message)
	if len(p.inputs) == 0 {
		return "", errors.New("unexpected input prompt: " + message)
	}
	s := p.inputs[0]
	p.inputs = p.inputs[1:]
	if s == "" {
		s = def
	}
	if validate != nil {
		if err := validate(s); err != nil {
			return "", err
		}
	}
	return s, nil
}

func (p *scriptedPrompter) Select(message string, options []string) (int, error) {
	p.asked = append(p.asked, message)
	if len(p.selects) == 0 {
		return 0, errors.New("unexpected select prompt: " + message)
	}
	i := p.selects[0]
	p.selects = p.selects[1:]
	return i, nil
}

func (p *scriptedPrompter) TextArea(message string) (string, error) {
	p.asked = append(p.asked, message)
	if len(p.areas) == 0 {
		return "", errors.New("unexpected text area prompt: " + message)
	}
	s := p.areas[0]
	p.areas = p.areas[1:]
	return s, nil
}

func (p *scriptedPrompter) Confirm(message string, def bool) (bool, error) {
	return def, nil
}

func testTemplate() *entity.Template {
	return &entity.Template{
		ID:         "general",
		Title:      "General field report",
		PhotoLimit: 2,
		Fields: []entity.FieldDef{
			{Key: "location", Label: "Location", Kind: entity.FieldKindText},
			{Key: "visit_date", Label: "Visit date", Kind: entity.FieldKindDate},
			{Key: "observations", Label: "Observations", Kind: entity.FieldKindTextarea},
			{Key: "follow_up", Label: "Follow-up", Kind: entity.FieldKindSelect, Options: []string{"No", "Yes"}},
			{Key: "count", Label: "Count", Kind: entity.FieldKindNumber},
		},
	}
}

func TestChooseTemplate(t *testing.T) {
	a := &entity.Template{ID: "a", Title: "A"}
	b := &entity.Template{ID: "b", Title: "B"}

	got, err := chooseTemplate(&scriptedPrompter{selects: []int{1}}, []*entity.Template{a, b})
	require.NoError(t, err)
	assert.Equal(t, "b", got.ID)

	_, err = chooseTemplate(&scriptedPrompter{}, nil)
	assert.Error(t, err)
}

func TestAskAnswers(t *testing.T) {
	dir := t.TempDir()
	photo := filepath.Join(dir, "gate.jpg")
	require.NoError(t, os.WriteFile(photo, []byte("jpeg"), 0o644))

	p := &scriptedPrompter{
		inputs: []string{
			"Acme Yards",  // organization
			"Dana",        // preparer
			"",            // report date, take default
			"North gate",  // location
			"2026-03-14",  // visit date
			"12",          // count
			photo,         // photo 1
			"",            // finish photos
		},
		selects: []int{1},
		areas:   []string{"Fence damaged", "Check again in spring"},
	}
	today := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)

	ans, err := askAnswers(p, testTemplate(), today)
	require.NoError(t, err)

	assert.Equal(t, "Acme Yards", ans.Values.OrganizationName)
	assert.Equal(t, "Dana", ans.Values.PreparerName)
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), ans.Values.Date)
	assert.Equal(t, entity.TextValue("North gate"), ans.Values.Fields["location"])
	assert.Equal(t, entity.DateValue(time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)), ans.Values.Fields["visit_date"])
	assert.Equal(t, entity.TextValue("Fence damaged"), ans.Values.Fields["observations"])
	assert.Equal(t, entity.TextValue("Yes"), ans.Values.Fields["follow_up"])
	assert.Equal(t, entity.TextValue("12"), ans.Values.Fields["count"])
	assert.Equal(t, "Check again in spring", ans.Notes)
	assert.Equal(t, []string{photo}, ans.PhotoPaths)
}

func TestAskAnswersSkipsEmptyFields(t *testing.T) {
	tpl := &entity.Template{
		ID:         "t",
		PhotoLimit: 1,
		Fields: []entity.FieldDef{
			{Key: "site", Label: "Site", Kind: entity.FieldKindText},
			{Key: "when", Label: "When", Kind: entity.FieldKindDate},
		},
	}
	p := &scriptedPrompter{
		inputs: []string{"Org", "Me", "2026-01-02", "", "", ""},
		areas:  []string{""},
	}

	ans, err := askAnswers(p, tpl, time.Now())
	require.NoError(t, err)
	assert.Empty(t, ans.Values.Fields)
	assert.Empty(t, ans.PhotoPaths)
}

func TestAskAnswersStopsAtPhotoLimit(t *testing.T) {
	dir := t.TempDir()
	photo := filepath.Join(dir, "a.png")
	require.NoError(t, os.WriteFile(photo, []byte("png"), 0o644))

	tpl := &entity.Template{ID: "t", PhotoLimit: 2}
	p := &scriptedPrompter{
		inputs: []string{"Org", "Me", "2026-01-02", photo, photo},
		areas:  []string{""},
	}

	ans, err := askAnswers(p, tpl, time.Now())
	require.NoError(t, err)
	assert.Len(t, ans.PhotoPaths, 2)
	assert.Empty(t, p.inputs)
}

func TestAskAnswersPropagatesAbort(t *testing.T) {
	p := &scriptedPrompter{}
	_, err := askAnswers(p, testTemplate(), time.Now())
	assert.Error(t, err)
}

func TestValidators(t *testing.T) {
	assert.NoError(t, validateDate(false)("2026-02-28"))
	assert.Error(t, validateDate(false)(""))
	assert.NoError(t, validateDate(true)(" "))
	assert.Error(t, validateDate(true)("28/02/2026"))

	assert.NoError(t, validateNumber(""))
	assert.NoError(t, validateNumber("3.5"))
	assert.Error(t, validateNumber("three"))

	dir := t.TempDir()
	assert.NoError(t, validatePhotoPath(""))
	assert.Error(t, validatePhotoPath(dir))
	assert.Error(t, validatePhotoPath(filepath.Join(dir, "missing.jpg")))
}
