package parser

import (
	"fmt"
	"strings"
	"testing"
)

func TestCSVParser_Batches(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("name,value\n")
	for i := 0; i < 25; i++ {
		fmt.Fprintf(&sb, "row%d,%d\n", i, i)
	}
	tree, err := (&CSVParser{}).Parse(strings.NewReader(sb.String()), "data.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tree.Title != "data" {
		t.Errorf("expected title %q, got %q", "data", tree.Title)
	}
	if len(tree.Sections) != 2 {
		t.Fatalf("expected 2 batches, got %d", len(tree.Sections))
	}
	if tree.Sections[0].Heading != "Rows 2-21" || tree.Sections[1].Heading != "Rows 22-26" {
		t.Errorf("unexpected headings %q, %q", tree.Sections[0].Heading, tree.Sections[1].Heading)
	}
	if !strings.HasPrefix(tree.Sections[0].Body, "name: row0; value: 0\nname: row1; value: 1") {
		t.Errorf("unexpected body %q", tree.Sections[0].Body)
	}
	if tree.Summary != "Columns: name, value" {
		t.Errorf("unexpected summary %q", tree.Summary)
	}
}

func TestCSVParser_RaggedAndBlankRows(t *testing.T) {
	in := "city,country\nParis,France,extra\n,\nBerlin\n"
	tree, err := (&CSVParser{}).Parse(strings.NewReader(in), "cities.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tree.Sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(tree.Sections))
	}
	want := "city: Paris; country: France; extra\ncity: Berlin"
	if tree.Sections[0].Body != want {
		t.Errorf("expected body %q, got %q", want, tree.Sections[0].Body)
	}
	if tree.Sections[0].Heading != "Rows 2-4" {
		t.Errorf("unexpected heading %q", tree.Sections[0].Heading)
	}
}

func TestCSVParser_QuotedNewlinesKeepLineNumbers(t *testing.T) {
	in := "name,note\na,\"line one\nline two\"\nb,x\n"
	tree, err := (&CSVParser{}).Parse(strings.NewReader(in), "notes.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tree.Sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(tree.Sections))
	}
	if tree.Sections[0].Heading != "Rows 2-4" {
		t.Errorf("expected heading %q, got %q", "Rows 2-4", tree.Sections[0].Heading)
	}
	want := "name: a; note: line one\nline two\nname: b; note: x"
	if tree.Sections[0].Body != want {
		t.Errorf("expected body %q, got %q", want, tree.Sections[0].Body)
	}
}

func TestCSVParser_Empty(t *testing.T) {
	tree, err := (&CSVParser{}).Parse(strings.NewReader(""), "empty.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tree.Sections) != 0 {
		t.Errorf("expected no sections, got %d", len(tree.Sections))
	}
}
