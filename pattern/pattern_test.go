package pattern

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bank(b string) func() string { return func() string { return b } }

func TestSerializeAfterAppend(t *testing.T) {
	a := New(DefaultCap, bank("tr909"))
	a.Append("bd")
	a.Append("sd")
	assert.Equal(t, `s("bd sd").bank("tr909")`, a.Serialize())
	assert.Equal(t, `$: s("bd sd").bank("tr909")`, a.Lane())
	assert.Equal(t, a.Lane(), a.Text())
}

func TestCapSlidesWindow(t *testing.T) {
	a := New(16, bank("tr909"))
	var want []string
	for i := 0; i < 20; i++ {
		s := fmt.Sprintf("s%d", i)
		a.Append(s)
		want = append(want, s)
	}
	assert.Equal(t, want[4:], a.Sounds())
	assert.Equal(t, 16, a.Len())
}

func TestCap32(t *testing.T) {
	a := New(32, bank("tr808"))
	for i := 0; i < 40; i++ {
		a.Append("hh")
	}
	assert.Equal(t, 32, a.Len())
	assert.Equal(t, 32, a.Cap())
}

func TestNonPositiveCapUsesDefault(t *testing.T) {
	a := New(0, nil)
	assert.Equal(t, DefaultCap, a.Cap())
	assert.Equal(t, `s("hh*4, bd sd")`, a.Serialize())
}

func TestClearSerializesPlaceholder(t *testing.T) {
	a := New(DefaultCap, bank("tr909"))
	a.Append("bd")
	a.Clear()
	got := a.Serialize()
	assert.NotEmpty(t, got)
	assert.Equal(t, `s("hh*4, bd sd").bank("tr909")`, got)
	assert.Zero(t, a.Len())
}

func TestSoundsIsACopy(t *testing.T) {
	a := New(DefaultCap, bank("tr909"))
	a.Append("bd")
	got := a.Sounds()
	got[0] = "xx"
	assert.Equal(t, []string{"bd"}, a.Sounds())
}

func TestBankReadAtSerializeTime(t *testing.T) {
	current := "tr909"
	a := New(DefaultCap, func() string { return current })
	a.Append("bd")
	current = "tr808"
	assert.Equal(t, `s("bd").bank("tr808")`, a.Serialize())
}

func TestHandEditDiverges(t *testing.T) {
	a := New(DefaultCap, bank("tr909"))
	a.Append("bd")

	a.SetText(`$: s("bd*2 sd").bank("tr909")`)
	require.True(t, a.Edited())

	a.Append("hh")
	assert.Equal(t, `$: s("bd*2 sd").bank("tr909")`, a.Text(), "appends must not clobber the edit")
	assert.Equal(t, []string{"bd", "hh"}, a.Sounds())

	a.Clear()
	assert.False(t, a.Edited())
	assert.Equal(t, `$: s("hh*4, bd sd").bank("tr909")`, a.Text())
}

func TestSetTextToGeneratedIsNotAnEdit(t *testing.T) {
	a := New(DefaultCap, bank("tr909"))
	a.Append("bd")
	a.SetText(a.Lane())
	assert.False(t, a.Edited())
}

func TestReset(t *testing.T) {
	a := New(DefaultCap, bank("tr909"))
	a.Append("cp")
	a.SetText("nonsense")
	a.Reset()
	assert.False(t, a.Edited())
	assert.Zero(t, a.Len())
}

func TestOneShot(t *testing.T) {
	assert.Equal(t, `s("cp").bank("tr909").play()`, OneShot("cp", "tr909"))
}

type fakeEval struct {
	code    []string
	stops   int
	evalErr error
	stopErr error
}

func (f *fakeEval) Evaluate(code string) error {
	f.code = append(f.code, code)
	return f.evalErr
}

func (f *fakeEval) Stop() error {
	f.stops++
	return f.stopErr
}

func TestTransportPlayStop(t *testing.T) {
	a := New(DefaultCap, bank("tr909"))
	a.Append("bd")
	ev := &fakeEval{}
	tr := NewTransport(a, ev)

	require.NoError(t, tr.Play())
	assert.True(t, tr.Playing())
	assert.Equal(t, []string{`$: s("bd").bank("tr909")`}, ev.code)

	require.NoError(t, tr.Stop())
	assert.False(t, tr.Playing())
	assert.Equal(t, 1, ev.stops)
}

func TestTransportSendsTempo(t *testing.T) {
	a := New(DefaultCap, bank("tr909"))
	a.Append("bd")
	ev := &fakeEval{}
	tr := NewTransport(a, ev)
	bpm := 120
	tr.Tempo = func() int { return bpm }

	require.NoError(t, tr.Play())
	bpm = 90
	require.NoError(t, tr.Play())
	assert.Equal(t, []string{
		"setcpm(120/4)\n" + `$: s("bd").bank("tr909")`,
		"setcpm(90/4)\n" + `$: s("bd").bank("tr909")`,
	}, ev.code)
	assert.Equal(t, `$: s("bd").bank("tr909")`, a.Text(), "tempo never lands in the pattern text")
}

func TestTransportPlaysHandEdit(t *testing.T) {
	a := New(DefaultCap, bank("tr909"))
	a.Append("bd")
	a.SetText(`$: s("sd*4")`)
	ev := &fakeEval{}
	tr := NewTransport(a, ev)

	require.NoError(t, tr.Play())
	assert.Equal(t, []string{`$: s("sd*4")`}, ev.code)
}

func TestTransportBadPatternKeepsText(t *testing.T) {
	a := New(DefaultCap, bank("tr909"))
	a.SetText(`$: s("bd`)
	ev := &fakeEval{evalErr: errors.New("unterminated string")}
	tr := NewTransport(a, ev)

	assert.Error(t, tr.Play())
	assert.False(t, tr.Playing())
	assert.Equal(t, `$: s("bd`, a.Text())
}

func TestTransportStopErrorStillStops(t *testing.T) {
	a := New(DefaultCap, bank("tr909"))
	ev := &fakeEval{}
	tr := NewTransport(a, ev)
	require.NoError(t, tr.Play())

	ev.stopErr = errors.New("engine gone")
	assert.Error(t, tr.Stop())
	assert.False(t, tr.Playing())
}

func TestCheck(t *testing.T) {
	ok := []string{
		`s("bd sd").bank("tr909")`,
		`$: s("hh*4, bd sd")`,
		`s("<bd sd> [hh hh]")`,
		`s("bd").gain(0.8).play()`,
		`note("c e g").s('piano')`,
		`s("bd \" sd")`,
		`s("bd(3,8) sd")`,
		`$: s("bd sd").bank("tr909") // don't touch`,
		"// kick's fine\n$: s(\"bd\")",
		`/* kick's fine */ s("bd")`,
		`s("bd" /* ) */)`,
		`s("bd // still a string")`,
		`s("bd").gain(1/2)`,
		``,
	}
	for _, code := range ok {
		assert.NoError(t, Check(code), code)
	}

	bad := map[string]int{
		`s("bd sd"`:       1,
		`s("bd sd)`:       8,
		`s("bd sd"))`:     10,
		`s("[bd sd")`:     3,
		`s("<bd sd]")`:    8,
		`s("bd").bank(`:   12,
		`s("bd`:           2,
		`s("bd") /* open`: 8,
		`s("bd") /*/`:     8,
	}
	for code, off := range bad {
		err := Check(code)
		var se *SyntaxError
		if assert.ErrorAs(t, err, &se, code) {
			assert.Equal(t, off, se.Offset, code)
		}
	}

	assert.EqualError(t, Check(`s("bd") /* open`), "unterminated comment at offset 8")
}
