package cli

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"
)

// Prompter asks the user for whatever the command line left out
type Prompter interface {
	// URL asks for the page URL
	URL() (string, error)
	// Selection asks which of n listed tracks to download, as "1,3,5" or "all"
	Selection(n int) (string, error)
	// Quality asks for a quality tier; def is preselected
	Quality(def string) (string, error)
}

// SurveyPrompter prompts on the terminal
type SurveyPrompter struct{}

// URL implements Prompter
func (SurveyPrompter) URL() (string, error) {
	var url string
	prompt := &survey.Input{
		Message: "URL:",
		Help:    "A gaana.com song, album or playlist page",
	}
	if err := survey.AskOne(prompt, &url); err != nil {
		return "", err
	}
	return url, nil
}

// Selection implements Prompter
func (SurveyPrompter) Selection(n int) (string, error) {
	var sel string
	prompt := &survey.Input{
		Message: "Select:",
		Help:    fmt.Sprintf("1,3,5 or 'all' or Enter=all (1-%d)", n),
	}
	if err := survey.AskOne(prompt, &sel); err != nil {
		return "", err
	}
	return sel, nil
}

// Quality implements Prompter
func (SurveyPrompter) Quality(def string) (string, error) {
	options := make([]string, len(QualityOptions))
	for i, q := range QualityOptions {
		options[i] = q.Label
	}

	prompt := &survey.Select{
		Message:  "Quality:",
		Options:  options,
		Default:  options[qualityIndex(def)],
		PageSize: len(options),
	}

	selectedIndex := 0
	if err := survey.AskOne(prompt, &selectedIndex); err != nil {
		return "", err
	}
	return QualityOptions[selectedIndex].Tier, nil
}
