package service

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"motortax-web/internal/models"
)

func assembleTestDeclaration(t *testing.T) *models.Declaration {
	t.Helper()
	a := NewDeclarationAssembler(2024)
	vehicles := []models.Vehicle{
		{Plate: "BA111AA", Category: "M1", Displacement: 1998, FirstRegistration: "10.5.2018", Hybrid: true},
		{Plate: "BA222BB", Category: "O4", FirstRegistration: "1.1.2015"},
		{Plate: "BA333CC", Category: "N1", WeightKG: 3500, FirstRegistration: "1.6.2020"},
	}
	return a.Assemble(testTaxpayer(), vehicles, models.DeclarationRegular, decimal.NewFromInt(50), "test run")
}

func TestGenerateDocumentStructure(t *testing.T) {
	d := assembleTestDeclaration(t)

	out, err := NewXMLService(t.TempDir()).Generate(d)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	s := string(out)

	if !strings.HasPrefix(s, `<?xml version="1.0" encoding="UTF-8"?>`) {
		t.Fatal("missing XML header")
	}

	for _, want := range []string{
		"<dokument>",
		"<hlavicka>",
		"<dic>2023456789</dic>",
		"<po>1</po>",
		"<rdp>1</rdp>",
		"<odp>0</odp>",
		"<od>1.1.2024</od>",
		"<do>31.12.2024</do>",
		"<obchodneMeno>Doprava Test s.r.o.</obchodneMeno>",
		"<r35>3</r35>",
		"<r39>50</r39>",
		"<r06-EVC>BA111AA</r06-EVC>",
		"<r03Kategoria>O4</r03Kategoria>",
		"<r16hybrid>1</r16hybrid>",
		"<poznamky>test run</poznamky>",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("document missing %s", want)
		}
	}

	if got := strings.Count(s, "<strana3>"); got != 2 {
		t.Fatalf("strana3 count = %d, want 2", got)
	}
	if !strings.Contains(s, "<aktualna>2</aktualna>") || !strings.Contains(s, "<celkovo>2</celkovo>") {
		t.Fatal("missing page numbering")
	}
}

func TestGenerateEmptySlot(t *testing.T) {
	// Three vehicles leave the last right column blank: booleans stay "0",
	// numbers and dates stay empty.
	d := assembleTestDeclaration(t)

	out, err := NewXMLService(t.TempDir()).Generate(d)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	s := string(out)

	last := s[strings.LastIndex(s, "<stlpec2>"):]
	for _, want := range []string{
		"<r01></r01>",
		"<r03Kategoria></r03Kategoria>",
		"<r16hybrid>0</r16hybrid>",
		"<r13sadzba></r13sadzba>",
		"<r21dan1></r21dan1>",
	} {
		if !strings.Contains(last, want) {
			t.Errorf("blank column missing %s", want)
		}
	}
}

func TestGenerateEmptyDeclaration(t *testing.T) {
	a := NewDeclarationAssembler(2024)
	d := a.Assemble(testTaxpayer(), nil, models.DeclarationRegular, decimal.Zero, "")

	out, err := NewXMLService(t.TempDir()).Generate(d)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	s := string(out)

	if got := strings.Count(s, "<strana3>"); got != 1 {
		t.Fatalf("strana3 count = %d, want 1", got)
	}
	if !strings.Contains(s, "<r35></r35>") {
		t.Fatal("zero vehicle count must render empty")
	}
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	d := assembleTestDeclaration(t)

	path, err := NewXMLService(dir).WriteFile(d)
	if err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if filepath.Base(path) != "dmv_2023456789_2024.xml" {
		t.Fatalf("unexpected file name %s", filepath.Base(path))
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !strings.Contains(string(content), "<dokument>") {
		t.Fatal("written file is not the declaration document")
	}
}
