// Package ioc wires the operator's dependency graph with
// golobby/container/v3: every collaborator is registered once, as a
// singleton, never constructed lazily per-request (§9).
package ioc

import (
	"log/slog"

	container "github.com/golobby/container/v3"
)

type ContainerBuilder struct {
	Container container.Container
}

func NewContainerBuilder() *ContainerBuilder {
	c := container.New()

	b := &ContainerBuilder{Container: c}

	if err := c.Singleton(func() container.Container { return b.Container }); err != nil {
		slog.Error("failed to register *container.Container in NewContainerBuilder")
		panic(err)
	}
	if err := c.Singleton(func() *ContainerBuilder { return b }); err != nil {
		slog.Error("failed to register *ContainerBuilder in NewContainerBuilder")
		panic(err)
	}

	return b
}

func (b *ContainerBuilder) Build() container.Container {
	return b.Container
}
