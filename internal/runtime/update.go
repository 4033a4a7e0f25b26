package runtime

import (
	"context"

	"github.com/vk/designergo/internal/component"
	"github.com/vk/designergo/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

// write routes a single node write through the pass machinery. Outside a
// pass it starts one and drains to completion. Inside a pass (a re-entrant
// write from an event handler) the write is absorbed into the active dirty
// set when the node has not been finalized yet, and deferred to a follow-up
// pass when it has; it is never dropped and never applied twice.
func (i *Instance) write(ctx context.Context, node string, value cty.Value) error {
	if i.inPass {
		if pos, ok := i.plan.Position[node]; ok && pos > i.cursor {
			if i.storeIfChanged(node, value) {
				i.activeSeed[node] = true
			}
		} else {
			i.pending = append(i.pending, pendingWrite{node: node, value: value})
		}
		return nil
	}
	return i.drain(ctx, []pendingWrite{{node: node, value: value}})
}

// setMany applies a batch of parent-pushed writes as one pass. This is how a
// parent forwards changed child inputs: all of them together, so the child
// recomputes once per parent pass, not once per changed input.
func (i *Instance) setMany(ctx context.Context, values map[string]cty.Value) error {
	writes := make([]pendingWrite, 0, len(values))
	for _, name := range sortedValueKeys(values) {
		writes = append(writes, pendingWrite{node: name, value: values[name]})
	}
	if i.inPass {
		i.pending = append(i.pending, writes...)
		return nil
	}
	return i.drain(ctx, writes)
}

// drain runs passes until no pending writes remain. Watch events raised by
// a pass are delivered between passes; handler writes they cause land in
// pending and feed the next iteration.
func (i *Instance) drain(ctx context.Context, writes []pendingWrite) error {
	i.inPass = true
	defer func() { i.inPass = false }()

	for len(writes) > 0 {
		seed := make(map[string]bool)
		for _, w := range writes {
			if i.storeIfChanged(w.node, w.value) {
				seed[w.node] = true
			}
		}
		writes = nil

		if len(seed) > 0 {
			changed, err := i.runPass(ctx, seed)
			if err != nil {
				return err
			}
			if err := i.raiseWatches(ctx, changed); err != nil {
				return err
			}
		}

		writes, i.pending = i.pending, nil
	}
	return nil
}

// runPass is one incremental recomputation sweep: walk the precomputed
// topological order, recompute exactly the nodes with a dirty producer, and
// stop propagation wherever the recomputed value is unchanged. Newly dirty
// mapped child fields are batched per child and forwarded in a single
// setMany call.
func (i *Instance) runPass(ctx context.Context, seed map[string]bool) (map[string]bool, error) {
	logger := ctxlog.FromContext(ctx)
	i.passes++
	i.activeSeed = seed
	defer func() {
		i.activeSeed = nil
		i.cursor = len(i.plan.Order)
	}()

	dirty := make(map[string]bool)
	forwards := make(map[string]map[string]cty.Value)

	for idx, id := range i.plan.Order {
		i.cursor = idx
		n := i.plan.Nodes[id]

		// activeSeed is re-read per node: absorbed re-entrant writes ahead
		// of the cursor appear here.
		if i.activeSeed[id] {
			dirty[id] = true
			if n.Child != "" && !n.ReadOnly {
				addForward(forwards, n.Child, n.ChildField, i.values[id])
			}
			continue
		}
		if n.Field != nil && n.Field.Kind == component.Event {
			continue
		}
		if !anyDirty(n.Producers, dirty) {
			continue
		}
		if n.Field != nil && n.Field.Kind == component.Const {
			// Consts settled at construction; a dirty producer does not
			// reopen them.
			continue
		}

		var newVal cty.Value
		var err error
		switch {
		case n.ReadOnly:
			// The child must see its new inputs before we read back.
			if err := i.flushForwards(ctx, n.Child, forwards); err != nil {
				return nil, err
			}
			newVal, err = i.children[n.Child].Get(n.ChildField)
		case n.Derivation != nil:
			newVal, err = i.evaluate(ctx, n, n.Derivation)
		default:
			continue
		}
		if err != nil {
			return nil, err
		}

		if i.storeIfChanged(id, newVal) {
			dirty[id] = true
			if n.Child != "" && !n.ReadOnly {
				addForward(forwards, n.Child, n.ChildField, newVal)
			}
		}
	}
	i.cursor = len(i.plan.Order)

	for _, ch := range i.comp.Children {
		if err := i.flushForwards(ctx, ch.Name, forwards); err != nil {
			return nil, err
		}
	}

	logger.Debug("Update pass complete.", "component", i.comp.Name, "pass", i.passes, "dirty", len(dirty))
	return dirty, nil
}

func addForward(forwards map[string]map[string]cty.Value, child, field string, val cty.Value) {
	if forwards[child] == nil {
		forwards[child] = make(map[string]cty.Value)
	}
	forwards[child][field] = val
}

// flushForwards pushes the pending input batch for one child, triggering
// that child's own single update pass.
func (i *Instance) flushForwards(ctx context.Context, child string, forwards map[string]map[string]cty.Value) error {
	vals := forwards[child]
	if len(vals) == 0 {
		return nil
	}
	delete(forwards, child)
	ctxlog.FromContext(ctx).Debug("Forwarding inputs to child.", "component", i.comp.Name, "child", child, "fields", len(vals))
	return i.children[child].setMany(ctx, vals)
}

// raiseWatches publishes each changed field that declares a watch accessor
// through its named event. Delivery happens between passes; handler writes
// are deferred into the next pass by write().
func (i *Instance) raiseWatches(ctx context.Context, changed map[string]bool) error {
	for _, f := range i.comp.Fields {
		w := f.Accessors.Watch
		if w == nil || !changed[f.Name] {
			continue
		}
		args := map[string]cty.Value{"value": i.values[f.Name]}
		if err := i.Raise(ctx, w.Event, args); err != nil {
			return err
		}
	}
	return nil
}

func anyDirty(producers []string, dirty map[string]bool) bool {
	for _, p := range producers {
		if dirty[p] {
			return true
		}
	}
	return false
}
