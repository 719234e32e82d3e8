package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/danburkert/crdt"
	"github.com/danburkert/crdt/counter"
	"github.com/danburkert/crdt/set"
	"github.com/danburkert/crdt/store"
	"github.com/danburkert/crdt/utils"
)

const usage = `replicas:   new <name> | use <name> | replicas
counters:   inc <key> [n] | dec <key> [n] | count <key>
sets:       add <key> <elem> | del <key> <elem> | has <key> <elem> | ls <key>
converge:   sync <name> | cmp <name> <key>
other:      help | exit`

// replica bundles the stores of one simulated node. Counters are PN
// counters keyed by the replica id, sets are last-writer-wins keyed by a
// session-wide transaction counter.
type replica struct {
	name     string
	id       crdt.ReplicaID
	counters *store.Store[*counter.PnCounter, counter.PnCounterIncrement]
	sets     *store.Store[*set.LwwSet[string], set.LwwSetOp[string]]
}

func newReplica(name string, log utils.Logger) *replica {
	id := crdt.ReplicaIDFromName(name)
	return &replica{
		name: name,
		id:   id,
		counters: store.New[*counter.PnCounter, counter.PnCounterIncrement](name+".counters", func() *counter.PnCounter {
			return counter.NewPnCounter(id)
		}, log),
		sets: store.New[*set.LwwSet[string], set.LwwSetOp[string]](name+".sets", func() *set.LwwSet[string] {
			return set.NewLwwSet[string]()
		}, log),
	}
}

// nextTid hands out session-unique transaction ids for the LWW sets. A real
// deployment would use hybrid logical clocks; for a single-process sandbox a
// counter is enough.
func (repl *REPL) nextTid() crdt.TransactionID {
	repl.tid++
	return crdt.TransactionID(repl.tid)
}

func (repl *REPL) replica(name string) (*replica, error) {
	r, ok := repl.replicas[name]
	if !ok {
		return nil, errors.Errorf("no such replica: %s", name)
	}
	return r, nil
}

func (repl *REPL) need(args []string, n int, shape string) error {
	if len(args) != n {
		return errors.Errorf("usage: %s", shape)
	}
	return nil
}

func (repl *REPL) CommandNew(args []string) (string, error) {
	if err := repl.need(args, 1, "new <name>"); err != nil {
		return "", err
	}
	name := args[0]
	if _, ok := repl.replicas[name]; ok {
		return "", errors.Errorf("replica exists: %s", name)
	}
	r := newReplica(name, repl.log)
	repl.replicas[name] = r
	repl.current = r
	return fmt.Sprintf("%s (replica id %x)", name, uint64(r.id)), nil
}

func (repl *REPL) CommandUse(args []string) (string, error) {
	if err := repl.need(args, 1, "use <name>"); err != nil {
		return "", err
	}
	r, err := repl.replica(args[0])
	if err != nil {
		return "", err
	}
	repl.current = r
	return r.name, nil
}

func (repl *REPL) CommandReplicas(args []string) (string, error) {
	names := make([]string, 0, len(repl.replicas))
	for name := range repl.replicas {
		if repl.current != nil && name == repl.current.name {
			name = name + " *"
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, "\n"), nil
}

func (repl *REPL) CommandInc(args []string, sign int64) (string, error) {
	if repl.current == nil {
		return "", errors.New("no replica selected, try: new <name>")
	}
	if len(args) < 1 || len(args) > 2 {
		return "", errors.New("usage: inc <key> [n]")
	}
	amount := int64(1)
	if len(args) == 2 {
		n, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return "", errors.Wrap(err, "bad amount")
		}
		amount = n
	}
	var count int64
	repl.current.counters.Update(args[0], func(c *counter.PnCounter) {
		c.Increment(sign * amount)
		count = c.Count()
	})
	return strconv.FormatInt(count, 10), nil
}

func (repl *REPL) CommandCount(args []string) (string, error) {
	if repl.current == nil {
		return "", errors.New("no replica selected, try: new <name>")
	}
	if err := repl.need(args, 1, "count <key>"); err != nil {
		return "", err
	}
	snap, ok := repl.current.counters.Snapshot(args[0])
	if !ok {
		return "0", nil
	}
	return strconv.FormatInt(snap.Count(), 10), nil
}

func (repl *REPL) CommandAdd(args []string) (string, error) {
	if repl.current == nil {
		return "", errors.New("no replica selected, try: new <name>")
	}
	if err := repl.need(args, 2, "add <key> <elem>"); err != nil {
		return "", err
	}
	tid := repl.nextTid()
	var ok bool
	repl.current.sets.Update(args[0], func(s *set.LwwSet[string]) {
		_, ok = s.Insert(args[1], tid)
	})
	if !ok {
		return "", errors.Errorf("stale insert: %s", args[1])
	}
	return args[1], nil
}

func (repl *REPL) CommandDel(args []string) (string, error) {
	if repl.current == nil {
		return "", errors.New("no replica selected, try: new <name>")
	}
	if err := repl.need(args, 2, "del <key> <elem>"); err != nil {
		return "", err
	}
	tid := repl.nextTid()
	var ok bool
	repl.current.sets.Update(args[0], func(s *set.LwwSet[string]) {
		_, ok = s.Remove(args[1], tid)
	})
	if !ok {
		return "", errors.Errorf("stale removal: %s", args[1])
	}
	return args[1], nil
}

func (repl *REPL) CommandHas(args []string) (string, error) {
	if repl.current == nil {
		return "", errors.New("no replica selected, try: new <name>")
	}
	if err := repl.need(args, 2, "has <key> <elem>"); err != nil {
		return "", err
	}
	snap, ok := repl.current.sets.Snapshot(args[0])
	if ok && snap.Contains(args[1]) {
		return "true", nil
	}
	return "false", nil
}

func (repl *REPL) CommandList(args []string) (string, error) {
	if repl.current == nil {
		return "", errors.New("no replica selected, try: new <name>")
	}
	if err := repl.need(args, 1, "ls <key>"); err != nil {
		return "", err
	}
	snap, ok := repl.current.sets.Snapshot(args[0])
	if !ok {
		return "", nil
	}
	elements := snap.Elements()
	sort.Strings(elements)
	return strings.Join(elements, "\n"), nil
}

// CommandSync runs an anti-entropy round between the current replica and
// another one, over both the counter and the set stores.
func (repl *REPL) CommandSync(args []string) (string, error) {
	if repl.current == nil {
		return "", errors.New("no replica selected, try: new <name>")
	}
	if err := repl.need(args, 1, "sync <name>"); err != nil {
		return "", err
	}
	other, err := repl.replica(args[0])
	if err != nil {
		return "", err
	}
	if other == repl.current {
		return "", errors.New("cannot sync a replica with itself")
	}
	repl.current.counters.SyncWith(other.counters)
	repl.current.sets.SyncWith(other.sets)
	return fmt.Sprintf("%s <> %s", repl.current.name, other.name), nil
}

func (repl *REPL) CommandCompare(args []string) (string, error) {
	if repl.current == nil {
		return "", errors.New("no replica selected, try: new <name>")
	}
	if err := repl.need(args, 2, "cmp <name> <key>"); err != nil {
		return "", err
	}
	other, err := repl.replica(args[0])
	if err != nil {
		return "", err
	}
	mine, ok := repl.current.counters.Snapshot(args[1])
	if !ok {
		mine = counter.NewPnCounter(repl.current.id)
	}
	theirs, ok := other.counters.Snapshot(args[1])
	if !ok {
		theirs = counter.NewPnCounter(other.id)
	}
	return mine.Compare(theirs).String(), nil
}
