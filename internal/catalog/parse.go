// Package catalog imports problem definitions from exported quiz pages.
package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"unicode"

	"github.com/abhisek/drill/internal/store"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

var (
	// ErrNoQuizData means the document has no quizData object.
	ErrNoQuizData = errors.New("no quizData object found")

	// ErrInvalidDefinition means the quizData object is malformed.
	ErrInvalidDefinition = errors.New("invalid problem definition")
)

var (
	reQuizData      = regexp.MustCompile(`(?s)const quizData = (\{.*?\});`)
	reOrdinalPrefix = regexp.MustCompile(`^\d+\s*`)
	reNonWord       = regexp.MustCompile(`[^\w\s-]`)
	reBlankLines    = regexp.MustCompile(`\n{3,}`)
)

const quizDataSchema = `{
	"type": "object",
	"required": ["title", "instructions", "solutions", "tests"],
	"properties": {
		"title": {"type": "string", "minLength": 1},
		"instructions": {"type": "string"},
		"solutions": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["content"],
				"properties": {"content": {"type": "string"}}
			}
		},
		"tests": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["content"],
				"properties": {"content": {"type": "string", "minLength": 1}}
			}
		}
	}
}`

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func quizSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(quizDataSchema))
		if err != nil {
			schemaErr = fmt.Errorf("parse schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		const url = "schema://quiz-data.json"
		if err := c.AddResource(url, doc); err != nil {
			schemaErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiledSchema, schemaErr = c.Compile(url)
	})
	return compiledSchema, schemaErr
}

type snippet struct {
	Content string `json:"content"`
}

type quizData struct {
	Title        string    `json:"title"`
	Instructions string    `json:"instructions"`
	Solutions    []snippet `json:"solutions"`
	Tests        []snippet `json:"tests"`
}

// Definition is the part of a quiz page a problem is built from.
type Definition struct {
	Title        string
	Filename     string
	Instructions string
	SolutionStub string
	TestCode     string
}

// Input converts the definition into a store upsert input.
func (d Definition) Input() store.ProblemInput {
	return store.ProblemInput{
		Title:        d.Title,
		Filename:     d.Filename,
		Instructions: d.Instructions,
		SolutionStub: d.SolutionStub,
		TestCode:     d.TestCode,
	}
}

// Parse extracts a Definition from a quiz page. ext is the solution file
// extension, including the dot.
func Parse(page []byte, ext string) (Definition, error) {
	m := reQuizData.FindSubmatch(page)
	if m == nil {
		return Definition{}, ErrNoQuizData
	}
	raw := m[1]

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return Definition{}, fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
	}
	schema, err := quizSchema()
	if err != nil {
		return Definition{}, err
	}
	if err := schema.Validate(doc); err != nil {
		return Definition{}, fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
	}

	var q quizData
	if err := json.Unmarshal(raw, &q); err != nil {
		return Definition{}, fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
	}

	return Definition{
		Title:        q.Title,
		Filename:     FilenameFor(q.Title, ext),
		Instructions: StripMarkup(q.Instructions),
		SolutionStub: StubFromStarter(q.Solutions[0].Content),
		TestCode:     q.Tests[0].Content,
	}, nil
}

// FilenameFor derives the solution file name from a problem title: the
// leading ordinal is dropped, diacritics are removed, characters other than
// letters, digits, underscores, spaces and hyphens are stripped, and spaces
// become underscores.
func FilenameFor(title, ext string) string {
	name := reOrdinalPrefix.ReplaceAllString(title, "")

	var buf []rune
	for _, r := range norm.NFD.String(name) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		buf = append(buf, r)
	}
	name = reNonWord.ReplaceAllString(string(buf), "")
	name = strings.ReplaceAll(strings.TrimSpace(name), " ", "_")

	if name == "" {
		name = "problem"
	}
	return name + ext
}

// StubFromStarter keeps the first line of the starter code (normally the
// function signature) and gives it an empty body.
func StubFromStarter(code string) string {
	first, _, _ := strings.Cut(code, "\n")
	return strings.TrimRight(first, "\r") + "\n    pass\n"
}

// StripMarkup returns the text content of an HTML fragment with entities
// decoded. Line breaks and block ends become newlines.
func StripMarkup(fragment string) string {
	z := html.NewTokenizer(strings.NewReader(fragment))
	var b strings.Builder
	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF, or a read error after which the text so far is kept.
			out := reBlankLines.ReplaceAllString(b.String(), "\n\n")
			return strings.TrimSpace(out)
		case html.TextToken:
			b.Write(z.Text())
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			if string(name) == "br" {
				b.WriteByte('\n')
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "p", "div", "li", "pre", "ul", "ol", "h1", "h2", "h3", "h4", "h5", "h6":
				b.WriteByte('\n')
			}
		}
	}
}
