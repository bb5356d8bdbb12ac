package delta

import (
	"reflect"
	"testing"
)

func TestDiff(t *testing.T) {
	tests := []struct {
		name            string
		prev, next      []int64
		wantSubscribe   []int64
		wantUnsubscribe []int64
	}{
		{
			name:          "initial set",
			prev:          nil,
			next:          []int64{1, 2, 3},
			wantSubscribe: []int64{1, 2, 3},
		},
		{
			name: "unchanged set",
			prev: []int64{1, 2, 3},
			next: []int64{1, 2, 3},
		},
		{
			name: "reordered set is unchanged",
			prev: []int64{1, 2, 3},
			next: []int64{3, 1, 2},
		},
		{
			name:            "grow and shrink",
			prev:            []int64{1, 2, 3},
			next:            []int64{2, 3, 4, 5},
			wantSubscribe:   []int64{4, 5},
			wantUnsubscribe: []int64{1},
		},
		{
			name:            "full replacement",
			prev:            []int64{1, 2},
			next:            []int64{9, 10},
			wantSubscribe:   []int64{9, 10},
			wantUnsubscribe: []int64{1, 2},
		},
		{
			name:            "empty next",
			prev:            []int64{1, 2},
			next:            nil,
			wantUnsubscribe: []int64{1, 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotSub, gotUnsub := Diff(tt.prev, tt.next)
			if !reflect.DeepEqual(gotSub, tt.wantSubscribe) {
				t.Errorf("toSubscribe = %v, want %v", gotSub, tt.wantSubscribe)
			}
			if !reflect.DeepEqual(gotUnsub, tt.wantUnsubscribe) {
				t.Errorf("toUnsubscribe = %v, want %v", gotUnsub, tt.wantUnsubscribe)
			}
		})
	}
}
