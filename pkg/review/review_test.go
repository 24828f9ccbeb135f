package review_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-adfeatures/pkg/engine"
	"github.com/goliatone/go-adfeatures/pkg/payload"
	"github.com/goliatone/go-adfeatures/pkg/review"
	"github.com/goliatone/go-adfeatures/pkg/schema"
	"github.com/goliatone/go-adfeatures/pkg/testsupport"
)

type stubDriver struct {
	inputs    []string
	selectIdx []int
	confirm   []bool
	textAreas []string
	info      []string
	selects   [][]string
}

func (s *stubDriver) Input(_ context.Context, cfg review.InputConfig) (string, error) {
	if len(s.inputs) == 0 {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[0]
	s.inputs = s.inputs[1:]
	if cfg.Validator != nil {
		if err := cfg.Validator(val); err != nil {
			return "", err
		}
	}
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, _ review.ConfirmConfig) (bool, error) {
	if len(s.confirm) == 0 {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[0]
	s.confirm = s.confirm[1:]
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, cfg review.SelectConfig) (int, error) {
	if len(s.selectIdx) == 0 {
		return -1, errors.New("no select scripted")
	}
	s.selects = append(s.selects, cfg.Options)
	val := s.selectIdx[0]
	s.selectIdx = s.selectIdx[1:]
	return val, nil
}

func (s *stubDriver) TextArea(_ context.Context, _ review.TextAreaConfig) (string, error) {
	if len(s.textAreas) == 0 {
		return "", errors.New("no textarea scripted")
	}
	val := s.textAreas[0]
	s.textAreas = s.textAreas[1:]
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.info = append(s.info, msg)
	return nil
}

func fieldResult(t *testing.T, sch *schema.Schema, id string, state engine.FieldState, labelID string) engine.FieldResult {
	t.Helper()
	field, ok := sch.Field(id)
	if !ok {
		t.Fatalf("unknown field %s", id)
	}
	return engine.FieldResult{
		ID: field.ID, Title: field.Title, Type: field.Type, Required: field.Required,
		Units: field.Units, Options: field.Options, LabelID: labelID, State: state,
	}
}

func TestFill(t *testing.T) {
	t.Parallel()

	sch := testsupport.CarSchema(t)
	res := &engine.Result{
		Schema: sch,
		Groups: []engine.GroupResult{{Title: "Автомобиль", Features: []engine.FieldResult{
			fieldResult(t, sch, testsupport.FieldTitle, engine.StateUnresolved, ""),
			fieldResult(t, sch, testsupport.FieldPrice, engine.StateUnresolved, ""),
			fieldResult(t, sch, testsupport.FieldImages, engine.StateUnresolved, ""),
			fieldResult(t, sch, testsupport.FieldMake, engine.StateResolved, "1"),
			fieldResult(t, sch, testsupport.FieldModel, engine.StateUnresolved, ""),
			fieldResult(t, sch, testsupport.FieldYear, engine.StateUnresolved, ""),
			fieldResult(t, sch, testsupport.FieldCleared, engine.StateUnresolved, ""),
		}}},
	}
	lookup := &testsupport.FakeLookup{Children: map[string]map[string][]schema.Option{
		testsupport.FieldModel: {"1": {{ID: "100", Title: "Camry"}, {ID: "101", Title: "RAV4"}}},
	}}
	driver := &stubDriver{
		textAreas: []string{" Toyota RAV4 "},
		inputs:    []string{"16 000", "2018"},
		selectIdx: []int{1, 1},
	}

	got, err := review.New(driver, review.WithOptionLookup(lookup)).Fill(context.Background(), res)
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	want := []payload.FeatureValue{
		{ID: "12", Value: "Toyota RAV4"},
		{ID: "2", Value: "16 000", Unit: "usd"},
		{ID: "21", Value: "101"},
		{ID: "19", Value: "2018"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("features mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"21<-1"}, lookup.Log()); diff != "" {
		t.Fatalf("lookup mismatch (-want +got):\n%s", diff)
	}
}

func TestFill_OptionalFieldsCanBeSkipped(t *testing.T) {
	t.Parallel()

	sch := testsupport.CarSchema(t)
	res := &engine.Result{
		Schema: sch,
		Groups: []engine.GroupResult{{Features: []engine.FieldResult{
			fieldResult(t, sch, testsupport.FieldTransmission, engine.StateUnresolved, ""),
			fieldResult(t, sch, testsupport.FieldCleared, engine.StateUnresolved, ""),
		}}},
	}
	driver := &stubDriver{selectIdx: []int{0}, confirm: []bool{true}}

	got, err := review.New(driver, review.WithOptionalFields()).Fill(context.Background(), res)
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	want := []payload.FeatureValue{{ID: "908", Value: "true"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("features mismatch (-want +got):\n%s", diff)
	}
	if driver.selects[0][0] != "(пропустить)" {
		t.Fatalf("optional dropdown should offer skipping, got %v", driver.selects[0])
	}
}

func TestFill_PropagatesAbort(t *testing.T) {
	t.Parallel()

	sch := testsupport.CarSchema(t)
	res := &engine.Result{
		Schema: sch,
		Groups: []engine.GroupResult{{Features: []engine.FieldResult{
			fieldResult(t, sch, testsupport.FieldYear, engine.StateUnresolved, ""),
		}}},
	}
	if _, err := review.New(&stubDriver{}).Fill(context.Background(), res); err == nil {
		t.Fatalf("expected driver error")
	}
}

func TestConfirm(t *testing.T) {
	t.Parallel()

	sch := testsupport.CarSchema(t)
	p := &payload.Payload{
		CategoryID: "658", SubcategoryID: "659", OfferType: "776",
		Features: []payload.Feature{{ID: "20", Value: "1"}, {ID: "2", Value: int64(16000), Unit: "eur"}},
	}

	driver := &stubDriver{confirm: []bool{false}}
	err := review.New(driver).Confirm(context.Background(), sch, p)
	if !errors.Is(err, review.ErrDeclined) {
		t.Fatalf("expected ErrDeclined, got %v", err)
	}
	if len(driver.info) != 1 || !strings.Contains(driver.info[0], "Марка: 1") || !strings.Contains(driver.info[0], "Цена: 16000 eur") {
		t.Fatalf("unexpected summary %q", driver.info)
	}

	driver = &stubDriver{confirm: []bool{true}}
	if err := review.New(driver).Confirm(context.Background(), sch, p); err != nil {
		t.Fatalf("confirm: %v", err)
	}
}
