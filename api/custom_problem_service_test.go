package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/goliatone/go-stepgate/auth"
	"github.com/google/uuid"
)

const sampleCustomProblem = `{"id":"p1","name":"Two Sum","description":"Find two numbers","defaultText":"def solve(): pass","tests":"assert solve()"}`

func TestCustomProblemService_RequiresAuth(t *testing.T) {
	gw := newTestGateway(t)

	rec := gw.do(http.MethodGet, "/customProblems/v1/", "", "")
	expectResponse(t, rec, http.StatusUnauthorized, auth.InvalidTokenMessage)
}

func TestCustomProblemService_SaveValidation(t *testing.T) {
	gw := newTestGateway(t)
	token := gw.tokenFor(t, "alice")

	rec := gw.do(http.MethodPost, "/customProblems/v1/save", `[`, token)
	expectResponse(t, rec, http.StatusBadRequest, InvalidJSONMessage)

	for name, body := range map[string]string{
		"missing tests":    `{"name":"n","description":"d","defaultText":"t"}`,
		"numeric name":     `{"name":1,"description":"d","defaultText":"t","tests":"x"}`,
		"null defaultText": `{"name":"n","description":"d","defaultText":null,"tests":"x"}`,
	} {
		t.Run(name, func(t *testing.T) {
			rec := gw.do(http.MethodPost, "/customProblems/v1/save", body, token)
			expectResponse(t, rec, http.StatusBadRequest, InvalidPayloadFieldsMessage)
		})
	}
}

func TestCustomProblemService_SaveGeneratesID(t *testing.T) {
	gw := newTestGateway(t)
	token := gw.tokenFor(t, "alice")

	rec := gw.do(http.MethodPost, "/customProblems/v1/save", `{"name":"n","description":"d","defaultText":"t","tests":"x"}`, token)
	expectStatus(t, rec, http.StatusCreated)
	var reply struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &reply); err != nil {
		t.Fatalf("decode reply: %v", err)
	}
	if _, err := uuid.Parse(reply.ID); err != nil {
		t.Fatalf("expected a uuid id, got %q", reply.ID)
	}

	rec = gw.do(http.MethodGet, "/customProblems/v1/"+reply.ID+"/nameOnly", "", token)
	expectResponse(t, rec, http.StatusOK, `{"id":"`+reply.ID+`","name":"n"}`)
}

func TestCustomProblemService_CRUD(t *testing.T) {
	gw := newTestGateway(t)
	token := gw.tokenFor(t, "alice")
	base := "/customProblems/v1/"

	rec := gw.do(http.MethodPost, base+"save", sampleCustomProblem, token)
	expectResponse(t, rec, http.StatusCreated, `{"id":"p1"}`)

	rec = gw.do(http.MethodPost, base+"save", `{"id":"p2","name":"Second","description":"two","defaultText":"","tests":""}`, token)
	expectStatus(t, rec, http.StatusCreated)

	rec = gw.do(http.MethodGet, base, "", token)
	expectResponse(t, rec, http.StatusOK, `[{"id":"p1","name":"Two Sum","description":"Find two numbers"},{"id":"p2","name":"Second","description":"two"}]`)

	rec = gw.do(http.MethodGet, base+"p1", "", token)
	expectResponse(t, rec, http.StatusOK, sampleCustomProblem)

	rec = gw.do(http.MethodGet, base+"p1/info", "", token)
	expectResponse(t, rec, http.StatusOK, `{"id":"p1","name":"Two Sum","description":"Find two numbers"}`)

	rec = gw.do(http.MethodGet, base+"p1/bogus", "", token)
	expectResponse(t, rec, http.StatusNotFound, NotFoundMessage)

	rec = gw.do(http.MethodPut, base+"p1", `{"name":"Three Sum","tests":null}`, token)
	expectResponse(t, rec, http.StatusOK, UpdatedMessage)

	rec = gw.do(http.MethodGet, base+"p1", "", token)
	expectResponse(t, rec, http.StatusOK, `{"id":"p1","name":"Three Sum","description":"Find two numbers","defaultText":"def solve(): pass","tests":"assert solve()"}`)

	rec = gw.do(http.MethodPut, base+"p1", `{`, token)
	expectResponse(t, rec, http.StatusBadRequest, InvalidJSONMessage)

	rec = gw.do(http.MethodDelete, base+"p1", "", token)
	expectResponse(t, rec, http.StatusNoContent, "")

	rec = gw.do(http.MethodGet, base+"p1", "", token)
	expectResponse(t, rec, http.StatusNotFound, NotFoundMessage)

	rec = gw.do(http.MethodGet, base, "", token)
	expectResponse(t, rec, http.StatusOK, `[{"id":"p2","name":"Second","description":"two"}]`)
}

func TestCustomProblemService_MissingProblems(t *testing.T) {
	gw := newTestGateway(t)
	token := gw.tokenFor(t, "alice")
	base := "/customProblems/v1/"

	rec := gw.do(http.MethodGet, base+"absent", "", token)
	expectResponse(t, rec, http.StatusNotFound, NotFoundMessage)

	rec = gw.do(http.MethodPut, base+"absent", `{"name":"x"}`, token)
	expectResponse(t, rec, http.StatusNotFound, NotFoundMessage)

	rec = gw.do(http.MethodPut, base, `{"name":"x"}`, token)
	expectResponse(t, rec, http.StatusNotFound, NotFoundMessage)

	rec = gw.do(http.MethodDelete, base, "", token)
	expectResponse(t, rec, http.StatusNotFound, NotFoundMessage)

	rec = gw.do(http.MethodPost, base+"p1", sampleCustomProblem, token)
	expectResponse(t, rec, http.StatusNotFound, NotFoundMessage)

	other := gw.tokenFor(t, "bob")
	rec = gw.do(http.MethodPost, base+"save", sampleCustomProblem, token)
	expectStatus(t, rec, http.StatusCreated)
	rec = gw.do(http.MethodGet, base+"p1", "", other)
	expectResponse(t, rec, http.StatusNotFound, NotFoundMessage)
}
