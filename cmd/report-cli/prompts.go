package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"

	"github.com/garyjia/field-report/internal/domain/entity"
)

// ErrAborted is returned when the user interrupts a prompt
var ErrAborted = errors.New("aborted by user")

const dateLayout = "2006-01-02"

// Prompter asks the user for one value at a time
type Prompter interface {
	Input(message, def string, validate func(string) error) (string, error)
	Select(message string, options []string) (int, error)
	TextArea(message string) (string, error)
	Confirm(message string, def bool) (bool, error)
}

type surveyPrompter struct{}

func (surveyPrompter) Input(message, def string, validate func(string) error) (string, error) {
	var out string
	var opts []survey.AskOpt
	if validate != nil {
		opts = append(opts, survey.WithValidator(func(ans interface{}) error {
			s, _ := ans.(string)
			return validate(s)
		}))
	}
	err := survey.AskOne(&survey.Input{Message: message, Default: def}, &out, opts...)
	return out, translateSurveyErr(err)
}

func (surveyPrompter) Select(message string, options []string) (int, error) {
	var out int
	err := survey.AskOne(&survey.Select{Message: message, Options: options, PageSize: 10}, &out)
	return out, translateSurveyErr(err)
}

func (surveyPrompter) TextArea(message string) (string, error) {
	var out string
	err := survey.AskOne(&survey.Multiline{Message: message}, &out)
	return out, translateSurveyErr(err)
}

func (surveyPrompter) Confirm(message string, def bool) (bool, error) {
	var out bool
	err := survey.AskOne(&survey.Confirm{Message: message, Default: def}, &out)
	return out, translateSurveyErr(err)
}

func translateSurveyErr(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return ErrAborted
	}
	return err
}

// Answers is everything collected for one report
type Answers struct {
	Values     entity.FormValues
	Notes      string
	PhotoPaths []string
}

func validateDate(optional bool) func(string) error {
	return func(s string) error {
		s = strings.TrimSpace(s)
		if s == "" && optional {
			return nil
		}
		if _, err := time.Parse(dateLayout, s); err != nil {
			return fmt.Errorf("use YYYY-MM-DD")
		}
		return nil
	}
}

func validateNumber(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if _, err := strconv.ParseFloat(s, 64); err != nil {
		return fmt.Errorf("not a number")
	}
	return nil
}

func validatePhotoPath(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	info, err := os.Stat(s)
	if err != nil {
		return fmt.Errorf("cannot open %s", s)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", s)
	}
	return nil
}

// chooseTemplate lets the user pick one of the templates
func chooseTemplate(p Prompter, templates []*entity.Template) (*entity.Template, error) {
	if len(templates) == 0 {
		return nil, fmt.Errorf("no templates available")
	}
	options := make([]string, len(templates))
	for i, t := range templates {
		options[i] = fmt.Sprintf("%s (%s)", t.Title, t.ID)
	}
	idx, err := p.Select("Report template:", options)
	if err != nil {
		return nil, err
	}
	if idx < 0 || idx >= len(templates) {
		return nil, fmt.Errorf("invalid template choice")
	}
	return templates[idx], nil
}

// askAnswers walks the fixed header fields, the template fields, notes and photos
func askAnswers(p Prompter, tpl *entity.Template, today time.Time) (*Answers, error) {
	ans := &Answers{Values: entity.FormValues{Fields: make(map[string]entity.FieldValue)}}

	var err error
	if ans.Values.OrganizationName, err = p.Input("Organization:", "", nil); err != nil {
		return nil, err
	}
	if ans.Values.PreparerName, err = p.Input("Prepared by:", "", nil); err != nil {
		return nil, err
	}
	date, err := p.Input("Report date (YYYY-MM-DD):", today.Format(dateLayout), validateDate(false))
	if err != nil {
		return nil, err
	}
	if ans.Values.Date, err = time.Parse(dateLayout, strings.TrimSpace(date)); err != nil {
		return nil, fmt.Errorf("report date: %w", err)
	}

	for _, fd := range tpl.Fields {
		v, err := askField(p, fd)
		if err != nil {
			return nil, err
		}
		if !v.IsEmpty() {
			ans.Values.Fields[fd.Key] = v
		}
	}

	if ans.Notes, err = p.TextArea("Notes:"); err != nil {
		return nil, err
	}

	limit := tpl.MaxPhotos()
	for len(ans.PhotoPaths) < limit {
		msg := fmt.Sprintf("Photo %d of up to %d (empty to finish):", len(ans.PhotoPaths)+1, limit)
		path, err := p.Input(msg, "", validatePhotoPath)
		if err != nil {
			return nil, err
		}
		path = strings.TrimSpace(path)
		if path == "" {
			break
		}
		ans.PhotoPaths = append(ans.PhotoPaths, path)
	}

	return ans, nil
}

func askField(p Prompter, fd entity.FieldDef) (entity.FieldValue, error) {
	label := fd.Label + ":"
	switch fd.Kind {
	case entity.FieldKindDate:
		s, err := p.Input(fd.Label+" (YYYY-MM-DD):", "", validateDate(true))
		if err != nil || strings.TrimSpace(s) == "" {
			return entity.FieldValue{}, err
		}
		t, err := time.Parse(dateLayout, strings.TrimSpace(s))
		if err != nil {
			return entity.FieldValue{}, fmt.Errorf("%s: %w", fd.Key, err)
		}
		return entity.DateValue(t), nil
	case entity.FieldKindTextarea:
		s, err := p.TextArea(label)
		return entity.TextValue(s), err
	case entity.FieldKindSelect:
		if len(fd.Options) == 0 {
			break
		}
		idx, err := p.Select(label, fd.Options)
		if err != nil {
			return entity.FieldValue{}, err
		}
		if idx < 0 || idx >= len(fd.Options) {
			return entity.FieldValue{}, nil
		}
		return entity.TextValue(fd.Options[idx]), nil
	case entity.FieldKindNumber:
		s, err := p.Input(label, "", validateNumber)
		return entity.TextValue(s), err
	}
	s, err := p.Input(label, fd.Placeholder, nil)
	return entity.TextValue(s), err
}
