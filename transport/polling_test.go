package transport_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/momentics/hioload-transport/fake"
	"github.com/momentics/hioload-transport/transport"
)

func TestSetPollingEntity_Exclusive(t *testing.T) {
	ps := fake.NewPollset()
	pss := fake.NewPollsetSet(ps)
	s := fake.NewStream(1)

	cases := []struct {
		name   string
		entity transport.PollingEntity
		want   []string
	}{
		{"pollset", transport.PollingEntityFromPollset(ps), []string{"SetPollset"}},
		{"pollset set", transport.PollingEntityFromPollsetSet(pss), []string{"SetPollsetSet"}},
		{"empty", transport.EmptyPollingEntity(), []string{}},
		{"nil pollset", transport.PollingEntityFromPollset(nil), []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tr := fake.NewTransport("fake")
			transport.SetPollingEntity(tr, s, tc.entity)
			assert.Equal(t, tc.want, tr.Methods())
		})
	}
}

func TestSetPollingEntity_PassesTheEntity(t *testing.T) {
	ps := fake.NewPollset()
	tr := fake.NewTransport("fake")
	s := fake.NewStream(1)

	transport.SetPollingEntity(tr, s, transport.PollingEntityFromPollset(ps))
	calls := tr.Calls()
	assert.Len(t, calls, 1)
	assert.Same(t, s, calls[0].Stream)
	assert.Same(t, ps, calls[0].Arg)
}

func TestDispatchPollingEntity_NilIsEmpty(t *testing.T) {
	tr := fake.NewTransport("fake")
	transport.DispatchPollingEntity(tr, fake.NewStream(1), nil)
	assert.Empty(t, tr.Calls())
}

func TestPollingEntity_Accessors(t *testing.T) {
	ps := fake.NewPollset()
	e := transport.PollingEntityFromPollset(ps)
	assert.Equal(t, transport.PollingEntityPollset, e.Kind())
	assert.Same(t, ps, e.Pollset())
	assert.Nil(t, e.PollsetSet())
	assert.Equal(t, "pollset", e.String())

	e = transport.PollingEntityFromPollsetSet(fake.NewPollsetSet())
	assert.Equal(t, "pollset_set", e.String())
	assert.Nil(t, e.Pollset())
	assert.Equal(t, "empty", transport.EmptyPollingEntity().String())
}
