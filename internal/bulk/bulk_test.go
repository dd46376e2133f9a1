package bulk

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestExecute_Order(t *testing.T) {
	items := []string{"Daffodil", "Dandelion", "Leek"}
	var executed []string

	op := &Operation{}
	result := op.Execute(items, func(item string) error {
		executed = append(executed, item)
		return nil
	})

	if result.TotalItems != 3 || result.Succeeded != 3 || result.Failed != 0 {
		t.Errorf("unexpected result %+v", result)
	}
	if !reflect.DeepEqual(executed, items) {
		t.Errorf("executed %v, want %v", executed, items)
	}
	if err := result.Err(); err != nil {
		t.Errorf("Err() = %v", err)
	}
}

func TestExecute_ContinueOnError(t *testing.T) {
	var lines bytes.Buffer
	op := &Operation{ContinueOnError: true, Errors: &lines}
	result := op.Execute([]string{"a", "b", "c", "d"}, func(item string) error {
		if item == "b" || item == "d" {
			return errors.New("boom")
		}
		return nil
	})

	if result.Succeeded != 2 || result.Failed != 2 || result.Skipped != 0 {
		t.Errorf("unexpected result %+v", result)
	}
	if got := lines.String(); got != "b: error: boom\nd: error: boom\n" {
		t.Errorf("error lines = %q", got)
	}
	if err := result.Err(); err == nil || err.Error() != "2 of 4 items failed" {
		t.Errorf("Err() = %v", err)
	}
}

func TestExecute_StopOnError(t *testing.T) {
	var executed []string
	op := &Operation{}
	result := op.Execute([]string{"a", "b", "c", "d"}, func(item string) error {
		executed = append(executed, item)
		if item == "b" {
			return errors.New("boom")
		}
		return nil
	})

	if !reflect.DeepEqual(executed, []string{"a", "b"}) {
		t.Errorf("executed %v", executed)
	}
	if result.Succeeded != 1 || result.Failed != 1 || result.Skipped != 2 {
		t.Errorf("unexpected result %+v", result)
	}
}

func TestErr_SingleItemKeepsError(t *testing.T) {
	sentinel := errors.New("unknown item")
	op := &Operation{}
	result := op.Execute([]string{"Melon"}, func(string) error { return sentinel })
	if !errors.Is(result.Err(), sentinel) {
		t.Errorf("Err() = %v, want the item error", result.Err())
	}
}

func TestPrintSummary(t *testing.T) {
	tests := []struct {
		name   string
		result Result
		want   string
	}{
		{"all", Result{TotalItems: 3, Succeeded: 3}, "All 3 items updated"},
		{"none", Result{TotalItems: 3, Failed: 1, Skipped: 2}, "No items updated (1 failed, 2 skipped)"},
		{"partial", Result{TotalItems: 4, Succeeded: 2, Failed: 2}, "Partial success: 2 updated, 2 failed (out of 4)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.result.PrintSummary(&buf)
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("summary = %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestExecute_Empty(t *testing.T) {
	op := &Operation{}
	result := op.Execute(nil, func(string) error {
		t.Fatal("fn should not run")
		return nil
	})
	if result.TotalItems != 0 || result.Err() != nil {
		t.Errorf("unexpected result %+v", result)
	}
}
