package models

import "testing"

func TestParseCategoryKind(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []CategoryKind
		wantErr bool
	}{
		{"Mood", "mood", []CategoryKind{KindMood}, false},
		{"Genre", "genre", []CategoryKind{KindGenre}, false},
		{"Energy", "energy", []CategoryKind{KindEnergy}, false},
		{"All", "all", Kinds(), false},
		{"EmptyMeansAll", "", Kinds(), false},
		{"Unknown", "tempo", nil, true},
		{"CaseSensitive", "Mood", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCategoryKind(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestKinds(t *testing.T) {
	kinds := Kinds()
	if len(kinds) != 3 {
		t.Fatalf("expected 3 kinds, got %d", len(kinds))
	}
	if kinds[0] != KindMood || kinds[1] != KindGenre || kinds[2] != KindEnergy {
		t.Errorf("unexpected order: %v", kinds)
	}
}
