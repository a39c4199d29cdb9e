package sim

import "testing"

func noopTask() *Task {
	return NewTask(func(*Worker, any, any) {}, nil, nil, nil, nil)
}

func TestEvent_ReleaseRunsFreeHooksOnce(t *testing.T) {
	// GIVEN an event whose payload carries free hooks
	objFreed, argFreed := 0, 0
	task := NewTask(func(*Worker, any, any) {}, "obj", "arg",
		func(o any) {
			if o != "obj" {
				t.Errorf("object free hook got %v, want obj", o)
			}
			objFreed++
		},
		func(a any) {
			if a != "arg" {
				t.Errorf("argument free hook got %v, want arg", a)
			}
			argFreed++
		})
	e := NewEvent(10, 0, 0, task)

	// WHEN it is retained and fully released
	e.Retain()
	e.Release()
	if objFreed != 0 || argFreed != 0 {
		t.Fatalf("free hooks ran before refcount hit zero")
	}
	e.Release()

	// THEN each hook ran exactly once
	if objFreed != 1 || argFreed != 1 {
		t.Errorf("free hooks ran (%d, %d) times, want (1, 1)", objFreed, argFreed)
	}
}

func TestNewTask_NilCallbackPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("NewTask(nil, ...) did not panic")
		}
	}()
	NewTask(nil, nil, nil, nil, nil)
}
