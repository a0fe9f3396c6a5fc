package main

import (
	"errors"
	"strings"

	"github.com/erikgeiser/promptkit/selection"
	"github.com/erikgeiser/promptkit/textinput"

	arcade "github.com/splashkit/arcade-packager"
)

func required(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("required")
	}
	return nil
}

func ask(prompt, initial string, validate func(string) error) (string, error) {
	in := textinput.New(prompt)
	in.InitialValue = initial
	in.Validate = validate
	if validate == nil {
		in.Validate = func(string) error { return nil }
	}
	s, err := in.RunPrompt()
	return strings.TrimSpace(s), err
}

func promptManifest() (*arcade.ManifestV1, error) {
	title, err := ask("Game title:", "", required)
	if err != nil {
		return nil, err
	}
	name, err := ask("Manifest name:", arcade.Slug(title), required)
	if err != nil {
		return nil, err
	}
	lang, err := selection.New("Language:", []arcade.Language{arcade.CPP, arcade.CSharp}).RunPrompt()
	if err != nil {
		return nil, err
	}
	desc, err := ask("Description (optional):", "", nil)
	if err != nil {
		return nil, err
	}
	repo, err := ask("Git repository URL:", "", required)
	if err != nil {
		return nil, err
	}
	branch, err := ask("Branch (optional):", "", nil)
	if err != nil {
		return nil, err
	}
	dir, err := ask("Source directory inside the repo (optional):", "", nil)
	if err != nil {
		return nil, err
	}
	return arcade.NewManifestV1(name, lang, desc, repo, branch, dir), nil
}
