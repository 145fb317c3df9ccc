package main

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/tutis12/osubeatmap/dotosu"
)

const tinyChart = "osu file format v14\n\n[Metadata]\nTitle:Tiny\n\n[HitObjects]\n256,192,1000,5,0\n"

func readFixture(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("dotosu", "testdata", "my_love.osu"))
	require.NoError(t, err)
	return data
}

func buildOsz(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestBeatmapConstants(t *testing.T) {
	t.Parallel()

	b, err := dotosu.DecodeBytes(readFixture(t))
	require.NoError(t, err)

	c := GetBeatmapConstants(b, NoMod)
	assert.InDelta(t, 36.48, c.CircleRadius, 1e-9)
	assert.InDelta(t, 900, c.Preempt, 1e-9)
	assert.InDelta(t, 7, c.ApproachRate, 1e-9)
	assert.InDelta(t, 44, c.Window300, 1e-9)
	assert.InDelta(t, 92, c.Window100, 1e-9)
	assert.InDelta(t, 140, c.Window50, 1e-9)

	fast := GetBeatmapConstants(b, Modifiers{Rate: 1.5})
	assert.InDelta(t, 600, fast.Preempt, 1e-9)
	assert.InDelta(t, 9, fast.ApproachRate, 1e-9)

	hr := GetBeatmapConstants(b, Modifiers{Rate: 1, HardRock: true})
	assert.InDelta(t, 54.4-4.48*5.2, hr.CircleRadius, 1e-9)
	assert.InDelta(t, 80-6*8.4, hr.Window300, 1e-9)
}

func TestPreemptRoundTrip(t *testing.T) {
	t.Parallel()

	for _, ar := range []float64{0, 3, 5, 8.5, 10} {
		assert.InDelta(t, ar, PreemptToAR(ApproachRateToPreempt(ar)), 1e-9)
	}
}

func TestThrottleBoundsConcurrency(t *testing.T) {
	t.Parallel()

	th := NewThrottle(2)
	var running, peak atomic.Int32
	var wg sync.WaitGroup
	for range 10 {
		done := th.GetToken()
		Run(&wg, func() {
			defer done()
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			running.Add(-1)
		}, func(error) {})
	}
	wg.Wait()
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestRunRecoversPanics(t *testing.T) {
	t.Parallel()

	var wg sync.WaitGroup
	var got error
	Run(&wg, func() { panic("boom") }, func(err error) { got = err })
	wg.Wait()
	require.Error(t, got)
	assert.Contains(t, got.Error(), "boom")
}

func TestOszSources(t *testing.T) {
	t.Parallel()

	data := buildOsz(t, map[string]string{
		"b.osu":         tinyChart,
		"a.osu":         tinyChart,
		"audio.mp3":     "not a chart",
		"extra/old.osu": tinyChart,
	})
	rejected := map[string]string{}
	sources, err := OszSources("set.osz", data, rejected)
	require.NoError(t, err)

	require.Len(t, sources, 2)
	assert.Equal(t, "set.osz/a.osu", sources[0].Name)
	assert.Equal(t, "set.osz/b.osu", sources[1].Name)
	body, err := sources[0].Load()
	require.NoError(t, err)
	assert.Equal(t, tinyChart, string(body))
	assert.Contains(t, rejected, "set.osz/extra/old.osu")

	_, err = OszSources("broken.osz", []byte("nope"), rejected)
	assert.Error(t, err)
}

func TestRunDecodesDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "01 my love.osu"), readFixture(t), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "02 broken.osu"), []byte("not a chart"), 0o644))
	osz := buildOsz(t, map[string]string{"tiny.osu": tinyChart})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "03 set.osz"), osz, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	var stdout, stderr bytes.Buffer
	db := filepath.Join(t.TempDir(), "index.db")
	code := run(context.Background(), []string{"-workers", "2", "-index", db, dir}, &stdout, &stderr)
	assert.Equal(t, 1, code)

	var summaries []Summary
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &summaries))
	require.Len(t, summaries, 2)
	assert.Equal(t, "My Love", summaries[0].Title)
	assert.Equal(t, 237, summaries[0].Sliders)
	assert.Equal(t, "#11feb0", summaries[0].ComboColours[0])
	assert.Equal(t, filepath.Join(dir, "03 set.osz")+"/tiny.osu", summaries[1].Source)
	assert.Equal(t, "Tiny", summaries[1].Title)
	assert.Len(t, summaries[1].ComboColours, 4)
}

func TestRunYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tiny.osu")
	require.NoError(t, os.WriteFile(path, []byte(tinyChart), 0o644))

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-format", "yaml", path}, &stdout, &stderr)
	require.Equal(t, 0, code)

	var summaries []map[string]any
	require.NoError(t, yaml.Unmarshal(stdout.Bytes(), &summaries))
	require.Len(t, summaries, 1)
	assert.Equal(t, "Tiny", summaries[0]["title"])
	assert.Equal(t, 1, summaries[0]["circles"])
}

func TestRunUsage(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 2, run(context.Background(), nil, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "usage")

	assert.Equal(t, 2, run(context.Background(), []string{"-format", "xml", "x.osu"}, &stdout, &stderr))
}
