package resolve_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-adfeatures/pkg/collab"
	"github.com/goliatone/go-adfeatures/pkg/resolve"
	"github.com/goliatone/go-adfeatures/pkg/schema"
	"github.com/goliatone/go-adfeatures/pkg/testsupport"
)

var makes = []schema.Option{
	{ID: "1", Title: "Toyota"},
	{ID: "2", Title: "BMW"},
	{ID: "3", Title: "Mercedes-Benz"},
}

func TestMatchOption(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		label  string
		wantID string
		ok     bool
	}{
		"exact case-insensitive": {label: "bmw", wantID: "2", ok: true},
		"label contains title":   {label: "Toyota Camry 2018", wantID: "1", ok: true},
		"title contains label":   {label: "mercedes", wantID: "3", ok: true},
		"no match":               {label: "Lada", ok: false},
		"empty":                  {label: "  ", ok: false},
	}
	for name, tc := range cases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			opt, ok := resolve.MatchOption(makes, tc.label)
			if ok != tc.ok || opt.ID != tc.wantID {
				t.Fatalf("MatchOption(%q) = %+v, %v", tc.label, opt, ok)
			}
		})
	}
}

func TestMerge_Precedence(t *testing.T) {
	t.Parallel()

	extracted := resolve.ResolvedValue{FieldID: "2", Label: "5000", Source: resolve.SourceExtraction}
	static := resolve.ResolvedValue{FieldID: "2", Label: "Used", LabelID: "18592", Source: resolve.SourceStaticDefault}
	declared := resolve.ResolvedValue{FieldID: "2", Label: "Left", Source: resolve.SourceDeclaredDefault}
	empty := resolve.ResolvedValue{FieldID: "2", Source: resolve.SourceExtraction}

	cases := map[string]struct {
		in   []resolve.ResolvedValue
		want resolve.ResolvedValue
	}{
		"extraction beats static":  {in: []resolve.ResolvedValue{static, extracted}, want: extracted},
		"static beats declared":    {in: []resolve.ResolvedValue{declared, static}, want: static},
		"empty extraction loses":   {in: []resolve.ResolvedValue{empty, declared}, want: declared},
		"nothing resolves":         {in: []resolve.ResolvedValue{empty}, want: resolve.Unresolved("2")},
		"no candidates":            {want: resolve.Unresolved("2")},
		"first wins within a tier": {in: []resolve.ResolvedValue{declared, {FieldID: "2", Label: "Right", Source: resolve.SourceDeclaredDefault}}, want: declared},
		"foreign field ignored":    {in: []resolve.ResolvedValue{{FieldID: "3", Label: "x", Source: resolve.SourceExtraction}}, want: resolve.Unresolved("2")},
	}
	for name, tc := range cases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			got := resolve.Merge("2", tc.in...)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("merge mismatch (-want +got):\n%s", diff)
			}
			again := resolve.Merge("2", tc.in...)
			if diff := cmp.Diff(got, again); diff != "" {
				t.Fatalf("merge not deterministic (-first +second):\n%s", diff)
			}
		})
	}
}

func TestStore_PutOnce(t *testing.T) {
	t.Parallel()

	store := resolve.NewStore()
	if err := store.Put(resolve.Unresolved("20")); err != nil {
		t.Fatalf("put: %v", err)
	}
	err := store.Put(resolve.ResolvedValue{FieldID: "20", Label: "BMW", Source: resolve.SourceExtraction})
	if !errors.Is(err, resolve.ErrDuplicate) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
	got, _ := store.Get("20")
	if got.Source != resolve.SourceUnresolved {
		t.Fatalf("store value replaced: %+v", got)
	}
}

func TestStore_ConcurrentDistinctFields(t *testing.T) {
	t.Parallel()

	store := resolve.NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = store.Put(resolve.ResolvedValue{FieldID: fmt.Sprint(i), Label: "v", Source: resolve.SourceExtraction})
		}(i)
	}
	wg.Wait()
	if store.Len() != 64 {
		t.Fatalf("expected 64 values, got %d", store.Len())
	}
}

func TestStatic(t *testing.T) {
	t.Parallel()

	field := schema.FieldDescriptor{
		ID:                    "775",
		Type:                  schema.FieldTypeDropdown,
		Options:               []schema.Option{{ID: "18592", Title: "С пробегом"}},
		StaticDefaultOptionID: "18592",
	}
	got, err := (&resolve.Static{}).Resolve(context.Background(), resolve.Input{Field: field})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	want := resolve.ResolvedValue{FieldID: "775", Label: "С пробегом", LabelID: "18592", Source: resolve.SourceStaticDefault}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("static mismatch (-want +got):\n%s", diff)
	}

	// configured id missing from options is a data mismatch, not an error
	got, err = (&resolve.Static{Table: map[string]string{"775": "99999"}}).Resolve(context.Background(), resolve.Input{Field: field})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.Resolved() {
		t.Fatalf("expected unresolved, got %+v", got)
	}
}

func TestDeclared(t *testing.T) {
	t.Parallel()

	field := schema.FieldDescriptor{
		ID:              "593",
		Type:            schema.FieldTypeDropdown,
		Options:         []schema.Option{{ID: "18669", Title: "Левый"}},
		DeclaredDefault: &schema.DeclaredDefault{Option: &schema.Option{ID: "18669", Title: "Левый"}},
	}
	got, _ := resolve.Declared{}.Resolve(context.Background(), resolve.Input{Field: field})
	want := resolve.ResolvedValue{FieldID: "593", Label: "Левый", LabelID: "18669", Source: resolve.SourceDeclaredDefault}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("declared mismatch (-want +got):\n%s", diff)
	}

	field.DeclaredDefault = nil
	got, _ = resolve.Declared{}.Resolve(context.Background(), resolve.Input{Field: field})
	if got.Resolved() {
		t.Fatalf("expected unresolved, got %+v", got)
	}
}

func TestExtraction_BindsDropdownOptions(t *testing.T) {
	t.Parallel()

	field := schema.FieldDescriptor{ID: "20", Type: schema.FieldTypeDropdown, Options: makes}
	cases := map[string]struct {
		candidate collab.Candidate
		want      resolve.ResolvedValue
	}{
		"known id": {
			candidate: collab.Candidate{Label: "whatever", LabelID: "2"},
			want:      resolve.ResolvedValue{FieldID: "20", Label: "BMW", LabelID: "2", Source: resolve.SourceExtraction},
		},
		"unknown id rematched by title": {
			candidate: collab.Candidate{Label: "toyota", LabelID: "777"},
			want:      resolve.ResolvedValue{FieldID: "20", Label: "Toyota", LabelID: "1", Source: resolve.SourceExtraction},
		},
		"free text kept without id": {
			candidate: collab.Candidate{Label: "Lada", LabelID: "777"},
			want:      resolve.ResolvedValue{FieldID: "20", Label: "Lada", Source: resolve.SourceExtraction},
		},
		"empty candidate": {
			candidate: collab.Candidate{},
			want:      resolve.Unresolved("20"),
		},
	}
	for name, tc := range cases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ext := &testsupport.FakeExtractor{Values: map[string]collab.Candidate{"20": tc.candidate}}
			got, err := (&resolve.Extraction{Extractor: ext}).Resolve(context.Background(), resolve.Input{Field: field, Text: "ad"})
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("extraction mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExtraction_SanitisesFreeText(t *testing.T) {
	t.Parallel()

	field := schema.FieldDescriptor{ID: "12", Type: schema.FieldTypeBilingualText}
	ext := &testsupport.FakeExtractor{Values: map[string]collab.Candidate{"12": {Label: "<b>BMW</b> X5"}}}
	got, _ := (&resolve.Extraction{Extractor: ext}).Resolve(context.Background(), resolve.Input{Field: field})
	if got.Label != "BMW X5" {
		t.Fatalf("unexpected label %q", got.Label)
	}
}

func TestExtraction_CollaboratorFailure(t *testing.T) {
	t.Parallel()

	field := schema.FieldDescriptor{ID: "2", Type: schema.FieldTypeNumeric}
	ext := &testsupport.FakeExtractor{Err: errors.New("rate limited")}
	got, err := (&resolve.Extraction{Extractor: ext}).Resolve(context.Background(), resolve.Input{Field: field})
	var collabErr *collab.CollaboratorError
	if !errors.As(err, &collabErr) {
		t.Fatalf("expected collaborator error, got %v", err)
	}
	if got.Resolved() {
		t.Fatalf("expected unresolved, got %+v", got)
	}
}

func storeWith(values ...resolve.ResolvedValue) *resolve.Store {
	store := resolve.NewStore()
	for _, v := range values {
		_ = store.Put(v)
	}
	return store
}

func TestDependent_ParentUnresolvedSkipsLookup(t *testing.T) {
	t.Parallel()

	lookup := &testsupport.FakeLookup{}
	dep := &resolve.Dependent{Lookup: lookup, Extractor: &testsupport.FakeExtractor{}}
	field := schema.FieldDescriptor{ID: "21", Type: schema.FieldTypeDropdown, DependsOn: "20", Role: schema.RoleDependentImmediate}

	for name, store := range map[string]*resolve.Store{
		"unresolved parent":   storeWith(resolve.Unresolved("20")),
		"free-text parent":    storeWith(resolve.ResolvedValue{FieldID: "20", Label: "Lada", Source: resolve.SourceExtraction}),
		"parent not in store": resolve.NewStore(),
	} {
		got, err := dep.Resolve(context.Background(), resolve.Input{Field: field, Store: store})
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if got.Resolved() {
			t.Fatalf("%s: expected unresolved, got %+v", name, got)
		}
	}
	if lookup.Calls() != 0 {
		t.Fatalf("expected zero lookups, got %d", lookup.Calls())
	}
}

func TestDependent_Immediate(t *testing.T) {
	t.Parallel()

	field := schema.FieldDescriptor{ID: "21", Type: schema.FieldTypeDropdown, DependsOn: "20", Role: schema.RoleDependentImmediate}
	parent := resolve.ResolvedValue{FieldID: "20", Label: "Toyota", LabelID: "1", Source: resolve.SourceExtraction}

	t.Run("single option auto-selected", func(t *testing.T) {
		t.Parallel()
		ext := &testsupport.FakeExtractor{}
		lookup := &testsupport.FakeLookup{Children: map[string]map[string][]schema.Option{
			"21": {"1": {{ID: "100", Title: "Camry"}}},
		}}
		got, err := (&resolve.Dependent{Lookup: lookup, Extractor: ext}).Resolve(context.Background(), resolve.Input{Field: field, Store: storeWith(parent)})
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if got.LabelID != "100" || got.Source != resolve.SourceDependentLookup {
			t.Fatalf("unexpected value %+v", got)
		}
		if ext.ChooseCalls() != 0 {
			t.Fatalf("expected no disambiguation, got %d calls", ext.ChooseCalls())
		}
	})

	t.Run("choice among many", func(t *testing.T) {
		t.Parallel()
		ext := &testsupport.FakeExtractor{Choices: map[string]collab.Candidate{"21": {Label: "corolla"}}}
		lookup := &testsupport.FakeLookup{Children: map[string]map[string][]schema.Option{
			"21": {"1": {{ID: "100", Title: "Camry"}, {ID: "101", Title: "Corolla"}}},
		}}
		got, err := (&resolve.Dependent{Lookup: lookup, Extractor: ext}).Resolve(context.Background(), resolve.Input{Field: field, Store: storeWith(parent)})
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		want := resolve.ResolvedValue{
			FieldID: "21", Label: "Corolla", LabelID: "101", Source: resolve.SourceDependentLookup,
			Options: []schema.Option{{ID: "100", Title: "Camry"}, {ID: "101", Title: "Corolla"}},
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("dependent mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff([]string{"21<-1"}, lookup.Log()); diff != "" {
			t.Fatalf("lookup log mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("choice outside options", func(t *testing.T) {
		t.Parallel()
		ext := &testsupport.FakeExtractor{Choices: map[string]collab.Candidate{"21": {Label: "Supra", LabelID: "999"}}}
		lookup := &testsupport.FakeLookup{Children: map[string]map[string][]schema.Option{
			"21": {"1": {{ID: "100", Title: "Camry"}, {ID: "101", Title: "Corolla"}}},
		}}
		got, _ := (&resolve.Dependent{Lookup: lookup, Extractor: ext}).Resolve(context.Background(), resolve.Input{Field: field, Store: storeWith(parent)})
		if got.Resolved() || got.LabelID != "" {
			t.Fatalf("expected unresolved, got %+v", got)
		}
	})
}

func TestDependent_MultiSignal(t *testing.T) {
	t.Parallel()

	field := schema.FieldDescriptor{
		ID: "2095", Type: schema.FieldTypeDropdown, DependsOn: "21", Role: schema.RoleDependentMultiSignal,
		Signals: map[string]string{"vin": "2512", "year": "19", "make": "20", "model": "21"},
	}
	store := storeWith(
		resolve.ResolvedValue{FieldID: "20", Label: "Toyota", LabelID: "1", Source: resolve.SourceExtraction},
		resolve.ResolvedValue{FieldID: "19", Label: "2018", Source: resolve.SourceExtraction},
		resolve.ResolvedValue{FieldID: "2512", Label: "JTNB11HK103456789", Source: resolve.SourceExtraction},
		resolve.ResolvedValue{FieldID: "21", Label: "Camry", LabelID: "100", Source: resolve.SourceDependentLookup},
	)

	t.Run("disambiguates with signals", func(t *testing.T) {
		t.Parallel()
		lookup := &testsupport.FakeLookup{Children: map[string]map[string][]schema.Option{
			"2095": {"100": {{ID: "7", Title: "XV70"}}},
		}}
		dis := &testsupport.FakeDisambiguator{Choices: map[string]collab.Candidate{"2095": {Label: "XV70", LabelID: "7"}}}
		got, err := (&resolve.Dependent{Lookup: lookup, Disambiguator: dis}).Resolve(context.Background(), resolve.Input{Field: field, Store: store})
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if got.LabelID != "7" {
			t.Fatalf("unexpected value %+v", got)
		}
		want := collab.Signals{"vin": "JTNB11HK103456789", "year": "2018", "make": "Toyota", "model": "Camry"}
		if diff := cmp.Diff(want, dis.LastSignals()); diff != "" {
			t.Fatalf("signals mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("empty candidate list skips disambiguation", func(t *testing.T) {
		t.Parallel()
		lookup := &testsupport.FakeLookup{}
		dis := &testsupport.FakeDisambiguator{}
		got, err := (&resolve.Dependent{Lookup: lookup, Disambiguator: dis}).Resolve(context.Background(), resolve.Input{Field: field, Store: store})
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if got.Resolved() {
			t.Fatalf("expected unresolved, got %+v", got)
		}
		if dis.Calls() != 0 {
			t.Fatalf("expected no disambiguation calls, got %d", dis.Calls())
		}
	})
}

type footer string

func (f footer) RenderFooter(address string) (string, error) {
	return string(f) + " " + address, nil
}

func TestComposite(t *testing.T) {
	t.Parallel()

	field := schema.FieldDescriptor{ID: "13", Type: schema.FieldTypeBilingualText, Role: schema.RoleTextComposite}
	blocks := map[string]string{
		"available": "Марка: Toyota\nГод: 2018",
		"location":  "📍 Мы находимся: Chisinau, Str. Test 5\n+37369123456",
		"condition": "Идеальное состояние",
	}

	t.Run("all steps succeed", func(t *testing.T) {
		t.Parallel()
		composer := &testsupport.FakeComposer{Steps: map[string]map[string]string{
			resolve.StepBlocks:    blocks,
			resolve.StepSummary:   {"summary": "Toyota 2018 в идеале."},
			resolve.StepTransform: {"condition": "Без ДТП.", "features": "Камера."},
		}}
		c := &resolve.Composite{Composer: composer, Footer: footer("Адрес:")}
		got, err := c.Resolve(context.Background(), resolve.Input{Field: field, Text: "ad"})
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		want := "Toyota 2018 в идеале.\n\nСОСТОЯНИЕ:\nБез ДТП.\n\nКОМПЛЕКТАЦИЯ:\nКамера.\nАдрес: Chisinau, Str. Test 5"
		if got.Label != want {
			t.Fatalf("label mismatch:\nwant %q\ngot  %q", want, got.Label)
		}
		if diff := cmp.Diff([]string{resolve.StepBlocks, resolve.StepSummary, resolve.StepTransform}, composer.Called()); diff != "" {
			t.Fatalf("steps mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("later steps fall back", func(t *testing.T) {
		t.Parallel()
		composer := &testsupport.FakeComposer{
			Steps: map[string]map[string]string{resolve.StepBlocks: blocks},
			Errs: map[string]error{
				resolve.StepSummary:   errors.New("timeout"),
				resolve.StepTransform: errors.New("timeout"),
			},
		}
		got, err := (&resolve.Composite{Composer: composer}).Resolve(context.Background(), resolve.Input{Field: field})
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if !strings.HasPrefix(got.Label, "Toyota 2018, идеальное состояние. Надежный автомобиль") {
			t.Fatalf("unexpected summary in %q", got.Label)
		}
		if !strings.Contains(got.Label, "Марка: Toyota\nГод: 2018\n\n📍 Мы находимся") {
			t.Fatalf("expected joined blocks in %q", got.Label)
		}
	})

	t.Run("no blocks is unresolved", func(t *testing.T) {
		t.Parallel()
		composer := &testsupport.FakeComposer{Steps: map[string]map[string]string{resolve.StepBlocks: {"available": "  "}}}
		got, err := (&resolve.Composite{Composer: composer}).Resolve(context.Background(), resolve.Input{Field: field})
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if got.Resolved() {
			t.Fatalf("expected unresolved, got %+v", got)
		}
		if diff := cmp.Diff([]string{resolve.StepBlocks}, composer.Called()); diff != "" {
			t.Fatalf("steps mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestAddress(t *testing.T) {
	t.Parallel()

	if got := resolve.Address(map[string]string{}); got != resolve.DefaultAddress {
		t.Fatalf("default address = %q", got)
	}
	got := resolve.Address(map[string]string{"location": "📞 069\n+373 69\n📍 Bălți, Independenței 1"})
	if got != "Bălți, Independenței 1" {
		t.Fatalf("address = %q", got)
	}
}

func TestSet_FallbackChain(t *testing.T) {
	t.Parallel()

	field := schema.FieldDescriptor{
		ID: "593", Type: schema.FieldTypeDropdown, Role: schema.RolePlain,
		Options:               []schema.Option{{ID: "18669", Title: "Левый"}, {ID: "18670", Title: "Правый"}},
		StaticDefaultOptionID: "18668",
		DeclaredDefault:       &schema.DeclaredDefault{Option: &schema.Option{ID: "18669", Title: "Левый"}},
	}
	set := &resolve.Set{
		Extraction: &resolve.Extraction{Extractor: &testsupport.FakeExtractor{}},
		Static:     &resolve.Static{},
		Declared:   resolve.Declared{},
	}

	got, err := set.Resolve(context.Background(), resolve.Input{Field: field})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.Source != resolve.SourceDeclaredDefault || got.LabelID != "18669" {
		t.Fatalf("expected declared default, got %+v", got)
	}

	set.Extraction = &resolve.Extraction{Extractor: &testsupport.FakeExtractor{
		Values: map[string]collab.Candidate{"593": {Label: "правый руль"}},
	}}
	got, _ = set.Resolve(context.Background(), resolve.Input{Field: field})
	if got.Source != resolve.SourceExtraction || got.LabelID != "18670" {
		t.Fatalf("expected extraction, got %+v", got)
	}
}

func TestSet_StaticDefaultUsesLiveOptions(t *testing.T) {
	t.Parallel()

	field := schema.FieldDescriptor{
		ID: "21", Type: schema.FieldTypeDropdown, DependsOn: "20", Role: schema.RoleDependentImmediate,
		StaticDefaultOptionID: "101",
	}
	lookup := &testsupport.FakeLookup{Children: map[string]map[string][]schema.Option{
		"21": {"1": {{ID: "100", Title: "Camry"}, {ID: "101", Title: "Corolla"}}},
	}}
	set := &resolve.Set{
		Dependent: &resolve.Dependent{Lookup: lookup, Extractor: &testsupport.FakeExtractor{}},
		Static:    &resolve.Static{},
		Declared:  resolve.Declared{},
	}
	store := storeWith(resolve.ResolvedValue{FieldID: "20", Label: "Toyota", LabelID: "1", Source: resolve.SourceExtraction})

	got, err := set.Resolve(context.Background(), resolve.Input{Field: field, Store: store})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.Source != resolve.SourceStaticDefault || got.LabelID != "101" || len(got.Options) != 2 {
		t.Fatalf("expected static default over live options, got %+v", got)
	}
}

func TestSet_CollaboratorErrorSkipsFallback(t *testing.T) {
	t.Parallel()

	field := schema.FieldDescriptor{
		ID: "775", Type: schema.FieldTypeDropdown, Role: schema.RolePlain,
		Options:               []schema.Option{{ID: "18592", Title: "С пробегом"}},
		StaticDefaultOptionID: "18592",
	}
	set := &resolve.Set{
		Extraction: &resolve.Extraction{Extractor: &testsupport.FakeExtractor{Err: errors.New("down")}},
		Static:     &resolve.Static{},
	}
	got, err := set.Resolve(context.Background(), resolve.Input{Field: field})
	if err == nil {
		t.Fatal("expected error")
	}
	if got.Resolved() {
		t.Fatalf("expected unresolved, got %+v", got)
	}
}

func TestBatch_SingleExtractCall(t *testing.T) {
	t.Parallel()

	fields := []schema.FieldDescriptor{{ID: "2"}, {ID: "19"}, {ID: "104"}}
	inner := &testsupport.FakeExtractor{Values: map[string]collab.Candidate{
		"2": {Label: "5000"}, "19": {Label: "2018"},
	}}
	batch := resolve.NewBatch(inner, fields)

	var wg sync.WaitGroup
	results := make([]map[string]collab.Candidate, len(fields))
	for i, field := range fields {
		wg.Add(1)
		go func(i int, field schema.FieldDescriptor) {
			defer wg.Done()
			results[i], _ = batch.Extract(context.Background(), "ad", []schema.FieldDescriptor{field})
		}(i, field)
	}
	wg.Wait()

	if inner.ExtractCalls() != 1 {
		t.Fatalf("expected one extract call, got %d", inner.ExtractCalls())
	}
	if results[0]["2"].Label != "5000" || results[1]["19"].Label != "2018" || len(results[2]) != 0 {
		t.Fatalf("unexpected results %+v", results)
	}
}
