package v1

import (
	"net/http"
	"testing"

	"github.com/Terrence-morris-dev/cag-portal-astro/internal/domain"
	"github.com/Terrence-morris-dev/cag-portal-astro/internal/interview"
)

func TestStartInterviewWithoutConfigRedirects(t *testing.T) {
	h := newTestHandler(t)

	rec := call(t, h.StartInterview, http.MethodPost, "", "session_id", "s1")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	var resp map[string]string
	decode(t, rec, &resp)
	if resp["redirect"] != ConfigPage {
		t.Fatalf("expected redirect to %s, got %+v", ConfigPage, resp)
	}
}

func TestStartInterviewNoQuestionsRedirects(t *testing.T) {
	h := newTestHandler(t)

	rec := call(t, h.ConfigureInterview, http.MethodPut, `{"category":"technical","difficulty":"impossible","questionCount":3}`, "session_id", "s1")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	rec = call(t, h.StartInterview, http.MethodPost, "", "session_id", "s1")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestConfigureInterviewValidation(t *testing.T) {
	h := newTestHandler(t)

	rec := call(t, h.ConfigureInterview, http.MethodPut, `{"category":"technical","questionCount":0}`, "session_id", "s1")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestInterviewFlow(t *testing.T) {
	h := newTestHandler(t)
	sid := []string{"session_id", "s1"}

	call(t, h.ConfigureInterview, http.MethodPut, `{"category":"clearance","difficulty":"mixed","questionCount":2,"mode":"untimed"}`, sid...)

	rec := call(t, h.StartInterview, http.MethodPost, "", sid...)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var st interview.Status
	decode(t, rec, &st)
	if st.State != domain.InterviewStateInProgress || st.Question == nil || st.Question.Number != 1 {
		t.Fatalf("unexpected status: %+v", st)
	}

	rec = call(t, h.ExitPrompt, http.MethodGet, "", sid...)
	var summary domain.ExitSummary
	decode(t, rec, &summary)
	if summary.TotalQuestions != 2 || summary.QuestionsLeft != 2 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	rec = call(t, h.AnswerQuestion, http.MethodPost, `{"answer":"Report to the FSO."}`, sid...)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	rec = call(t, h.SkipQuestion, http.MethodPost, "", sid...)
	decode(t, rec, &st)
	if st.State != domain.InterviewStateFinished || st.Results == nil {
		t.Fatalf("expected finished with results, got %+v", st)
	}

	rec = call(t, h.GetResults, http.MethodGet, "", sid...)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var results domain.InterviewResults
	decode(t, rec, &results)
	if len(results.Answers) != 2 || !results.Answers[1].Skipped() {
		t.Fatalf("unexpected results: %+v", results)
	}

	rec = call(t, h.SkipQuestion, http.MethodPost, "", sid...)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 after finish, got %d", rec.Code)
	}
}

func TestResumeAndExitFlow(t *testing.T) {
	h := newTestHandler(t)
	sid := []string{"session_id", "s2"}

	call(t, h.ConfigureInterview, http.MethodPut, `{"category":"technical","questionCount":3}`, sid...)
	call(t, h.StartInterview, http.MethodPost, "", sid...)
	call(t, h.AnswerQuestion, http.MethodPost, `{"answer":"one"}`, sid...)

	rec := call(t, h.ExitInterview, http.MethodPost, `{"choice":"save"}`, sid...)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = call(t, h.StartInterview, http.MethodPost, "", sid...)
	var st interview.Status
	decode(t, rec, &st)
	if st.ResumeOffer == nil || st.ResumeOffer.QuestionsLeft != 2 {
		t.Fatalf("expected resume offer, got %+v", st)
	}

	rec = call(t, h.DecideResume, http.MethodPost, `{"decision":"resume"}`, sid...)
	decode(t, rec, &st)
	if st.Question == nil || st.Question.Number != 2 {
		t.Fatalf("expected question 2 after resume, got %+v", st)
	}

	rec = call(t, h.DecideResume, http.MethodPost, `{"decision":"resume"}`, sid...)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 without pending offer, got %d", rec.Code)
	}

	rec = call(t, h.ExitInterview, http.MethodPost, `{"choice":"discard"}`, sid...)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	rec = call(t, h.StartInterview, http.MethodPost, "", sid...)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 after discard, got %d", rec.Code)
	}
}

func TestGetResultsMissing(t *testing.T) {
	h := newTestHandler(t)
	rec := call(t, h.GetResults, http.MethodGet, "", "session_id", "nobody")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
