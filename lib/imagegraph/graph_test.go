// Copyright 2026 The Devkit Authors
// SPDX-License-Identifier: Apache-2.0

package imagegraph

import (
	"slices"
	"testing"
)

func TestBuildOrder_DependenciesFirst(t *testing.T) {
	t.Parallel()

	manifests := Manifests{
		"os":        {},
		"toolchain": {Deps: map[string]string{"BASE": "os"}},
		"generator": {Deps: map[string]string{"BASE": "toolchain"}},
	}

	order, err := BuildOrder("generator", manifests)
	if err != nil {
		t.Fatalf("BuildOrder: %v", err)
	}
	want := []string{"os", "toolchain", "generator"}
	if !slices.Equal(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
}

func TestBuildOrder_SubgraphOnly(t *testing.T) {
	t.Parallel()

	manifests := Manifests{
		"os":        {},
		"toolchain": {Deps: map[string]string{"BASE": "os"}},
		"unrelated": {},
	}

	order, err := BuildOrder("toolchain", manifests)
	if err != nil {
		t.Fatalf("BuildOrder: %v", err)
	}
	if slices.Contains(order, "unrelated") {
		t.Errorf("order %v includes image outside the target's subgraph", order)
	}
}

func TestBuildOrder_AllImagesWhenNoTarget(t *testing.T) {
	t.Parallel()

	manifests := Manifests{
		"b": {Deps: map[string]string{"BASE": "a"}},
		"a": {},
		"c": {},
	}
	order, err := BuildOrder("", manifests)
	if err != nil {
		t.Fatalf("BuildOrder: %v", err)
	}
	if len(order) != 3 {
		t.Fatalf("order = %v, want all three images", order)
	}
	if slices.Index(order, "a") > slices.Index(order, "b") {
		t.Errorf("order = %v: dependency a must precede b", order)
	}
}

func TestBuildOrder_CycleDetected(t *testing.T) {
	t.Parallel()

	manifests := Manifests{
		"a": {Deps: map[string]string{"BASE": "b"}},
		"b": {Deps: map[string]string{"BASE": "a"}},
	}
	if _, err := BuildOrder("a", manifests); err == nil {
		t.Fatal("expected cycle error")
	}
}

func TestBuildOrder_UnknownTarget(t *testing.T) {
	t.Parallel()

	if _, err := BuildOrder("ghost", Manifests{"a": {}}); err == nil {
		t.Fatal("expected error for unknown target")
	}
}

func TestBuildOrder_Deterministic(t *testing.T) {
	t.Parallel()

	manifests := Manifests{
		"root": {Deps: map[string]string{"X": "left", "Y": "right"}},
		"left": {}, "right": {},
	}
	first, err := BuildOrder("root", manifests)
	if err != nil {
		t.Fatal(err)
	}
	for range 20 {
		again, err := BuildOrder("root", manifests)
		if err != nil {
			t.Fatal(err)
		}
		if !slices.Equal(first, again) {
			t.Fatalf("order not deterministic: %v vs %v", first, again)
		}
	}
}
