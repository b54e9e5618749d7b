package main

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jihwan-dase/dase-core/internal/dlog"
	"github.com/jihwan-dase/dase-core/internal/manager"
	"github.com/jihwan-dase/dase-core/internal/router"
)

func runLoopOnStrings(t *testing.T, lines ...string) []map[string]interface{} {
	t.Helper()

	inR, inW, err := os.Pipe()
	require.NoError(t, err)
	outR, outW, err := os.Pipe()
	require.NoError(t, err)

	r := router.New(manager.New())
	logger := dlog.New(dlog.Config{Output: io.Discard})

	done := make(chan struct{})
	go func() {
		runLoop(r, logger, inR, outW)
		outW.Close()
		close(done)
	}()

	for _, line := range lines {
		_, err := inW.Write([]byte(line + "\n"))
		require.NoError(t, err)
	}
	inW.Close()
	<-done

	var responses []map[string]interface{}
	scanner := bufio.NewScanner(outR)
	for scanner.Scan() {
		var resp map[string]interface{}
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &resp))
		responses = append(responses, resp)
	}
	require.NoError(t, scanner.Err())
	return responses
}

func TestRunLoopSkipsBlankLines(t *testing.T) {
	responses := runLoopOnStrings(t, "", "   ", `{"command":"get_capabilities"}`)
	require.Len(t, responses, 1)
	assert.Equal(t, "success", responses[0]["status"])
}

func TestRunLoopEmitsOneResponseLinePerRequest(t *testing.T) {
	responses := runLoopOnStrings(t,
		`{"command":"get_capabilities"}`,
		`{"command":"list_engines"}`,
	)
	require.Len(t, responses, 2)
	assert.Equal(t, "get_capabilities", responses[0]["command"])
	assert.Equal(t, "list_engines", responses[1]["command"])
}

func TestRunLoopReportsParseErrorAndContinues(t *testing.T) {
	responses := runLoopOnStrings(t, "not json at all", `{"command":"get_capabilities"}`)
	require.Len(t, responses, 2)
	assert.Equal(t, "error", responses[0]["status"])
	assert.Equal(t, "PARSE_ERROR", responses[0]["error_code"])
	assert.Equal(t, "success", responses[1]["status"])
}

func TestRunDescribeRejectsUnknownEngineType(t *testing.T) {
	err := runDescribe("not_a_real_engine_type")
	assert.Error(t, err)
}

func TestRunDescribeAcceptsKnownEngineType(t *testing.T) {
	err := runDescribe("phase4b")
	assert.NoError(t, err)
}
