package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"policypath/db"
	"policypath/models"
	"policypath/services"
	"policypath/services/quiz"

	"github.com/gorilla/mux"
)

type QuizHandler struct {
	service  *quiz.Service
	examRepo db.ExamResultRepository
}

func NewQuizHandler(service *quiz.Service, examRepo db.ExamResultRepository) *QuizHandler {
	return &QuizHandler{service: service, examRepo: examRepo}
}

func (h *QuizHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/quiz", h.GetQuiz).Methods("GET")
	router.HandleFunc("/quiz/start", h.StartQuiz).Methods("POST")
	router.HandleFunc("/quiz/submit", h.SubmitAnswer).Methods("POST")
	router.HandleFunc("/quiz/close", h.CloseQuiz).Methods("POST")
	router.HandleFunc("/quiz/results", h.GetResults).Methods("GET")
}

func (h *QuizHandler) GetQuiz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.View(ownerFromRequest(r)))
}

func (h *QuizHandler) StartQuiz(w http.ResponseWriter, r *http.Request) {
	log.Printf("[INFO] Received quiz start request")

	view, err := h.service.Start(r.Context(), ownerFromRequest(r))
	if err != nil {
		log.Printf("[ERROR] Quiz start failed: %v", err)
		var malformed *services.MalformedResponseError
		switch {
		case errors.Is(err, services.ErrEmptyVault):
			writeError(w, http.StatusPreconditionFailed, "Master at least one topic before starting a quiz")
		case errors.As(err, &malformed):
			writeError(w, http.StatusBadGateway, "Quiz generation failed, please retry")
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, view)
}

func (h *QuizHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var req models.QuizSubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("[ERROR] Failed to decode quiz submit JSON: %v", err)
		writeError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	view, err := h.service.Submit(ownerFromRequest(r), req.Option)
	if err != nil {
		log.Printf("[ERROR] Quiz submit failed: %v", err)
		if errors.Is(err, services.ErrQuizNotActive) {
			writeError(w, http.StatusConflict, err.Error())
		} else {
			writeError(w, http.StatusInternalServerError, "Failed to record answer")
		}
		return
	}

	writeJSON(w, http.StatusOK, view)
}

func (h *QuizHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	results, err := h.examRepo.GetExamResultsByOwner(ownerFromRequest(r))
	if err != nil {
		log.Printf("[ERROR] Failed to get exam results: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to retrieve exam results")
		return
	}

	writeJSON(w, http.StatusOK, results)
}

func (h *QuizHandler) CloseQuiz(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Close(ownerFromRequest(r))
	if err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, view)
}
