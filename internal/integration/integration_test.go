// internal/integration/integration_test.go
package integration

import (
	"bytes"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gtile/internal/app"
)

func write(t *testing.T, fn, data string) string {
	t.Helper()
	if err := os.WriteFile(fn, []byte(data), 0644); err != nil {
		t.Fatalf("write %s: %v", fn, err)
	}
	return fn
}

func randomSeq(r *rand.Rand, n int) string {
	const acgt = "ACGT"
	b := make([]byte, n)
	for i := range b {
		b[i] = acgt[r.Intn(4)]
	}
	return string(b)
}

// reference writes a two-contig FASTA, wrapped at 60 columns, and returns
// its path and the two sequences.
func reference(t *testing.T, dir string) (string, string, string) {
	t.Helper()
	r := rand.New(rand.NewSource(11))
	chr1, chr2 := randomSeq(r, 5000), randomSeq(r, 3000)
	var b strings.Builder
	for _, rec := range []struct{ id, seq string }{{"chr1", chr1}, {"chr2", chr2}} {
		fmt.Fprintf(&b, ">%s\n", rec.id)
		for i := 0; i < len(rec.seq); i += 60 {
			b.WriteString(rec.seq[i:min(i+60, len(rec.seq))])
			b.WriteByte('\n')
		}
	}
	return write(t, filepath.Join(dir, "ref.fa"), b.String()), chr1, chr2
}

func TestEndToEnd(t *testing.T) {
	dir := t.TempDir()
	ref, _, chr2 := reference(t, dir)
	idx := filepath.Join(dir, "ref.tsv.gz")

	var out, errBuf bytes.Buffer
	if code := app.Run([]string{"build", "--reference", ref, "--output", idx, "--loglevel", "error"}, &out, &errBuf); code != 0 {
		t.Fatalf("build exit %d, err=%s", code, errBuf.String())
	}

	out.Reset()
	errBuf.Reset()
	code := app.Run([]string{
		"query", "--input", idx,
		"--sequence", chr2[1000:1100], "--name", "probe",
		"--no-header", "--loglevel", "error",
	}, &out, &errBuf)
	if code != 0 {
		t.Fatalf("query exit %d, err=%s", code, errBuf.String())
	}
	first := strings.SplitN(out.String(), "\n", 2)[0]
	if want := "probe\tchr2\t1001\t1100\t+\t88\t0"; first != want {
		t.Fatalf("top candidate = %q, want %q", first, want)
	}
}

func TestParallelLoadMatchesSerial(t *testing.T) {
	dir := t.TempDir()
	ref, chr1, _ := reference(t, dir)
	idx := filepath.Join(dir, "ref.tsv.gz")
	var out, errBuf bytes.Buffer
	if code := app.Run([]string{"build", "--reference", ref, "--output", idx, "--loglevel", "error"}, &out, &errBuf); code != 0 {
		t.Fatalf("build exit %d, err=%s", code, errBuf.String())
	}
	qfa := write(t, filepath.Join(dir, "q.fa"), ">a\n"+chr1[10:90]+"\n>b\n"+chr1[4000:4075]+"\n")

	run := func(threads int) string {
		var out, errB bytes.Buffer
		code := app.Run([]string{
			"query", "--input", idx, "--queries", qfa,
			"--threads", fmt.Sprint(threads),
			"--format", "json", "--loglevel", "error",
		}, &out, &errB)
		if code != 0 {
			t.Fatalf("exit %d err %s", code, errB.String())
		}
		return out.String()
	}

	serial := run(1)
	parallel := run(4)
	if serial != parallel {
		t.Fatalf("parallel output differs from serial\nserial:\n%s\nparallel:\n%s", serial, parallel)
	}
}
