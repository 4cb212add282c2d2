package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/goliatone/go-stepgate/auth"
	"github.com/goliatone/go-stepgate/core"
	"github.com/goliatone/go-stepgate/documents"
)

const sampleTree = `{"rootNode":{"id":"root","name":"root","type":"folder","children":[{"id":"f1","name":"main.py","type":"file"}]}}`

func TestProblemFilesService_AuthIsCheckedPerRoute(t *testing.T) {
	gw := newTestGateway(t)

	rec := gw.do(http.MethodGet, "/problem/v1/unknown", "", "")
	expectResponse(t, rec, http.StatusNotFound, NotFoundMessage)

	rec = gw.do(http.MethodPost, "/problem/v1/save", `{"problemId":"p1"}`, "")
	expectResponse(t, rec, http.StatusUnauthorized, auth.InvalidTokenMessage)

	rec = gw.do(http.MethodGet, "/problem/v1/load?id=p1", "", "not-a-token")
	expectResponse(t, rec, http.StatusUnauthorized, auth.InvalidTokenMessage)
}

func TestProblemFilesService_SaveLoadAndHistory(t *testing.T) {
	gw := newTestGateway(t)
	token := gw.tokenFor(t, "alice")

	for version := 1; version <= 3; version++ {
		body := fmt.Sprintf(`{"problemId":"p1","tree":%s,"codeMap":{"f1":"print(%d)"}}`, sampleTree, version)
		rec := gw.do(http.MethodPost, "/problem/v1/save", body, token)
		expectResponse(t, rec, http.StatusCreated, ProblemSavedMessage)
	}

	rec := gw.do(http.MethodGet, "/problem/v1/load?id=p1", "", token)
	expectStatus(t, rec, http.StatusOK)
	if got := rec.Header().Get("Content-Type"); got != core.ContentTypeJSON {
		t.Fatalf("expected json content type, got %q", got)
	}
	var snapshot documents.ProblemSnapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snapshot); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if snapshot.CodeMap["f1"] != "print(3)" {
		t.Fatalf("expected latest code, got %#v", snapshot.CodeMap)
	}
	if string(snapshot.Tree) != sampleTree {
		t.Fatalf("expected tree verbatim, got %s", snapshot.Tree)
	}

	rec = gw.do(http.MethodGet, "/problem/v1/history?id=p1&nodeId=f1", "", token)
	expectResponse(t, rec, http.StatusOK, `["print(1)","print(2)","print(3)"]`)

	rec = gw.do(http.MethodGet, "/problem/v1/history?id=p1", "", token)
	expectResponse(t, rec, http.StatusBadRequest, MissingNodeIDMessage)
}

func TestProblemFilesService_DeletedFilesLoseTheirVersions(t *testing.T) {
	gw := newTestGateway(t)
	token := gw.tokenFor(t, "alice")

	rec := gw.do(http.MethodPost, "/problem/v1/save", `{"problemId":"p1","tree":`+sampleTree+`,"codeMap":{"f1":"x"}}`, token)
	expectStatus(t, rec, http.StatusCreated)

	rec = gw.do(http.MethodPost, "/problem/v1/save", `{"problemId":"p1","tree":{"rootNode":{"id":"root","name":"root","type":"folder"}},"codeMap":{},"deletedFiles":["f1"]}`, token)
	expectStatus(t, rec, http.StatusCreated)

	rec = gw.do(http.MethodGet, "/problem/v1/history?id=p1&nodeId=f1", "", token)
	expectResponse(t, rec, http.StatusOK, `[]`)
}

func TestProblemFilesService_Errors(t *testing.T) {
	gw := newTestGateway(t)
	token := gw.tokenFor(t, "alice")

	rec := gw.do(http.MethodGet, "/problem/v1/load", "", token)
	expectResponse(t, rec, http.StatusBadRequest, MissingProblemIDMessage)

	rec = gw.do(http.MethodPost, "/problem/v1/save", `{"tree":{}}`, token)
	expectResponse(t, rec, http.StatusBadRequest, MissingProblemIDMessage)

	rec = gw.do(http.MethodPost, "/problem/v1/save", `not json`, token)
	expectResponse(t, rec, http.StatusBadRequest, InvalidJSONMessage)

	rec = gw.do(http.MethodGet, "/problem/v1/load?id=absent", "", token)
	expectResponse(t, rec, http.StatusInternalServerError, core.InternalErrorMessage)
}

func TestStepTreeService(t *testing.T) {
	gw := newTestGateway(t)
	token := gw.tokenFor(t, "alice")

	rec := gw.do(http.MethodGet, "/problem/v2/unknown", "", "")
	expectResponse(t, rec, http.StatusUnauthorized, auth.InvalidTokenMessage)

	rec = gw.do(http.MethodGet, "/problem/v2/unknown", "", token)
	expectResponse(t, rec, http.StatusNotFound, NotFoundMessage)

	rec = gw.do(http.MethodGet, "/problem/v2/loadStepTree?id=p1", "", token)
	expectResponse(t, rec, http.StatusOK, "null")

	rec = gw.do(http.MethodPost, "/problem/v2/saveStepTree", `{"problemId":"p1","stepTree":{"steps":[1,2]}}`, token)
	expectResponse(t, rec, http.StatusCreated, StepTreeSavedMessage)

	rec = gw.do(http.MethodGet, "/problem/v2/loadStepTree?id=p1", "", token)
	expectResponse(t, rec, http.StatusOK, `{"root":{"steps":[1,2]}}`)

	other := gw.tokenFor(t, "bob")
	rec = gw.do(http.MethodGet, "/problem/v2/loadStepTree?id=p1", "", other)
	expectResponse(t, rec, http.StatusOK, "null")

	rec = gw.do(http.MethodGet, "/problem/v2/loadStepTree", "", token)
	expectResponse(t, rec, http.StatusBadRequest, MissingProblemIDMessage)
}
