package featurepoint

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestParseCasesCollection(t *testing.T) {
	raw := []byte(`cases:
  - module: Orders
    feature: Refund
    description: user requests refund
    keywords:
      - refund
      - order
`)
	fps, err := Parse(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fps) != 1 {
		t.Fatalf("expected 1 feature point, got %d", len(fps))
	}
	want := FeaturePoint{
		Module:      "Orders",
		Feature:     "Refund",
		Description: "user requests refund",
		Keywords:    []string{"refund", "order"},
	}
	if !reflect.DeepEqual(fps[0], want) {
		t.Fatalf("feature point mismatch: %+v", fps[0])
	}
}

func TestParseAliasKeysEquivalent(t *testing.T) {
	canonical := []byte(`- module: 订单
  feature: 退款
  description: 用户申请退款
  keywords: 退款, 订单
`)
	aliased := []byte(`- 模块: 订单
  功能: 退款
  描述: 用户申请退款
  关键词: 退款，订单
`)
	a, err := Parse(canonical)
	if err != nil {
		t.Fatalf("canonical parse failed: %v", err)
	}
	b, err := Parse(aliased)
	if err != nil {
		t.Fatalf("aliased parse failed: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("alias keys should yield identical result:\n%+v\n%+v", a, b)
	}
	if !reflect.DeepEqual(a[0].Keywords, []string{"退款", "订单"}) {
		t.Fatalf("keyword split mismatch: %v", a[0].Keywords)
	}
}

func TestParseTopLevelFormsAndMultiDoc(t *testing.T) {
	raw := []byte(`module: A
feature: f1
description: d1
---
cases:
  - module: B
    feature: f2
    description: d2
---
- module: C
  feature: f3
  description: d3
`)
	fps, err := Parse(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fps) != 3 {
		t.Fatalf("expected 3 feature points, got %d", len(fps))
	}
	if fps[0].Module != "A" || fps[1].Module != "B" || fps[2].Module != "C" {
		t.Fatalf("declaration order not preserved: %+v", fps)
	}
	if fps[0].Keywords != nil && len(fps[0].Keywords) != 0 {
		t.Fatalf("missing keywords should be empty, got %v", fps[0].Keywords)
	}
}

func TestParseMissingRequiredFieldFailsWholeBatch(t *testing.T) {
	raw := []byte(`cases:
  - module: A
    feature: f1
    description: d1
  - module: B
    feature: f2
`)
	_, err := Parse(raw)
	if err == nil {
		t.Fatal("expected error for missing description")
	}
	var malformed *MalformedInputError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedInputError, got %T", err)
	}
	if malformed.Index != 2 {
		t.Fatalf("expected entry index 2, got %d", malformed.Index)
	}
	if !strings.Contains(malformed.Error(), "description") {
		t.Fatalf("error should name the missing field: %s", malformed.Error())
	}
}

func TestParseRejectsEmptyAndBadStructure(t *testing.T) {
	if _, err := Parse([]byte("")); err == nil {
		t.Fatal("expected error for empty input")
	}
	if _, err := Parse([]byte("just a string")); err == nil {
		t.Fatal("expected error for scalar document")
	}
	if _, err := Parse([]byte("cases: not-a-list")); err == nil {
		t.Fatal("expected error for non-list cases")
	}
	if _, err := Parse([]byte("cases:\n  - 42")); err == nil {
		t.Fatal("expected error for non-object entry")
	}
}
