package validation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body interface{}) error
	GetLastResponseStatus() int
	GetLastResponseBody() []byte
}

// RegisterSteps registers document validation step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &validationSteps{tc: tc}

	ctx.Step(`^a shipment declared as:$`, steps.shipmentDeclaredAs)
	ctx.Step(`^a document named "([^"]*)" reading:$`, steps.documentReading)
	ctx.Step(`^I validate the document text$`, steps.validateDocumentText)
	ctx.Step(`^I validate the stored file "([^"]*)"$`, steps.validateStoredFile)
	ctx.Step(`^the verdict should be "([^"]*)"$`, steps.verdictShouldBe)
	ctx.Step(`^there should be no issues$`, steps.noIssues)
	ctx.Step(`^there should be a "([^"]*)" issue for "([^"]*)"$`, steps.issueFor)
}

type validationSteps struct {
	tc           TestContext
	shipment     map[string]string
	documentName string
	documentText string
}

type issue struct {
	Field    string `json:"field"`
	Severity string `json:"severity"`
}

type verdict struct {
	DocumentName string  `json:"documentName"`
	Status       string  `json:"status"`
	Issues       []issue `json:"issues"`
}

// shipmentDeclaredAs reads a two column table of field and value.
func (s *validationSteps) shipmentDeclaredAs(ctx context.Context, table *godog.Table) error {
	s.shipment = make(map[string]string)
	for _, row := range table.Rows {
		if len(row.Cells) != 2 {
			return fmt.Errorf("shipment rows need a field and a value")
		}
		field := strings.TrimSpace(row.Cells[0].Value)
		if field == "field" {
			continue
		}
		s.shipment[field] = strings.TrimSpace(row.Cells[1].Value)
	}
	return nil
}

func (s *validationSteps) documentReading(ctx context.Context, name string, body *godog.DocString) error {
	s.documentName = name
	s.documentText = body.Content
	return nil
}

func (s *validationSteps) validateDocumentText(ctx context.Context) error {
	return s.tc.POST("/validate-text", map[string]interface{}{
		"shipment":      s.shipment,
		"document_name": s.documentName,
		"document_text": s.documentText,
	})
}

func (s *validationSteps) validateStoredFile(ctx context.Context, path string) error {
	return s.tc.POST("/validate-document", map[string]interface{}{
		"shipment":  s.shipment,
		"file_path": path,
	})
}

func (s *validationSteps) verdictShouldBe(ctx context.Context, expected string) error {
	v, err := s.verdict()
	if err != nil {
		return err
	}
	if v.Status != expected {
		return fmt.Errorf("expected verdict %s, got %s with issues %+v", expected, v.Status, v.Issues)
	}
	return nil
}

func (s *validationSteps) noIssues(ctx context.Context) error {
	v, err := s.verdict()
	if err != nil {
		return err
	}
	if len(v.Issues) != 0 {
		return fmt.Errorf("expected no issues, got %+v", v.Issues)
	}
	return nil
}

func (s *validationSteps) issueFor(ctx context.Context, severity, field string) error {
	v, err := s.verdict()
	if err != nil {
		return err
	}
	for _, is := range v.Issues {
		if is.Field == field && is.Severity == severity {
			return nil
		}
	}
	return fmt.Errorf("no %s issue for %s in %+v", severity, field, v.Issues)
}

func (s *validationSteps) verdict() (verdict, error) {
	var v verdict
	if status := s.tc.GetLastResponseStatus(); status != 200 {
		return v, fmt.Errorf("validation returned %d: %s", status, s.tc.GetLastResponseBody())
	}
	if err := json.Unmarshal(s.tc.GetLastResponseBody(), &v); err != nil {
		return v, fmt.Errorf("decode verdict: %w", err)
	}
	return v, nil
}
