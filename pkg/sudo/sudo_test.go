// pkg/sudo/sudo_test.go
package sudo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rootExecutor() *Executor {
	e := NewExecutor()
	e.geteuid = func() int { return 0 }
	return e
}

func TestNeedsElevation(t *testing.T) {
	e := NewExecutor()

	e.geteuid = func() int { return 0 }
	assert.False(t, e.NeedsElevation())

	e.geteuid = func() int { return 1000 }
	assert.True(t, e.NeedsElevation())
}

func TestEnsureCredentialAsRootIsNoop(t *testing.T) {
	e := rootExecutor()
	e.readSecret = func() (string, error) {
		t.Fatal("root must never be prompted")
		return "", nil
	}

	require.NoError(t, e.EnsureCredential(context.Background()))
	assert.Equal(t, stateUnset, e.state)
}

func TestEnsureCredentialIsWriteOnce(t *testing.T) {
	e := NewExecutor()
	e.geteuid = func() int { return 1000 }

	// An authenticated session never re-probes or re-prompts.
	e.state = stateAuthenticated
	e.secret = ""
	e.readSecret = func() (string, error) {
		t.Fatal("authenticated session must not prompt again")
		return "", nil
	}

	require.NoError(t, e.EnsureCredential(context.Background()))
	assert.Equal(t, stateAuthenticated, e.state)
}

func TestRunEmptyCommand(t *testing.T) {
	e := rootExecutor()
	assert.Error(t, e.Run(context.Background()))

	_, err := e.RunOutput(context.Background())
	assert.Error(t, err)
}

func TestRunDirectWhenRoot(t *testing.T) {
	e := rootExecutor()

	out, err := e.RunOutput(context.Background(), "echo", "elevated")
	require.NoError(t, err)
	assert.Equal(t, "elevated\n", string(out))
}

func TestSafeBuffer(t *testing.T) {
	var buf safeBuffer

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			buf.Write([]byte("a"))
		}
	}()
	for i := 0; i < 100; i++ {
		buf.Write([]byte("b"))
	}
	<-done

	assert.Len(t, buf.Bytes(), 200)
}
