package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"docassist/internal/adapter"
	"docassist/internal/adapter/utils"
	"docassist/internal/api"
	"docassist/internal/domain/docmodel"
	"docassist/internal/metrics"
	"docassist/internal/rag"
	"docassist/pkg/logger_i"
)

var logRH *logger_i.Logger
var ragService rag.Service
var messageStore docmodel.MessageStore

// InitHandlers wires the handler package to its collaborators. Must run
// before the router is mounted.
func InitHandlers(svc rag.Service, msgStore docmodel.MessageStore) {
	logRH = logger_i.NewLogger("requestHandler")
	ragService = svc
	messageStore = msgStore
}

func HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func AskHandler(w http.ResponseWriter, request *http.Request) {
	if !validateContext(request.Context()) {
		logRH.Warn("Invalid Context by request", "remote", request.RemoteAddr)
		return
	}

	start := time.Now()
	status := http.StatusOK
	defer func() { metrics.CaptureAskMetrics(strconv.Itoa(status), time.Since(start)) }()

	var requestData api.AskRequest
	defer closeBody(request.Body)
	if err := json.NewDecoder(request.Body).Decode(&requestData); err != nil || requestData.Question == "" {
		logRH.Warn("Bad Ask Request", "error:", err)
		status = http.StatusBadRequest
		WriteErrorResponse(w, status, "question is required")
		return
	}

	chatId := requestData.ChatId
	history := []string{}
	if chatId == "" {
		chatId = utils.GetNewUUID()
		logRH.Debug("New chat", "chatID:", chatId)
		if err := messageStore.InitNewChat(request.Context(), chatId); err != nil {
			logRH.Error("Failed to init chat", "error", err)
		}
	} else {
		if !messageStore.ValidateChatId(request.Context(), chatId) {
			status = http.StatusBadRequest
			WriteErrorResponse(w, status, "unknown chat id")
			return
		}
		past, err := messageStore.GetMessageHistory(request.Context(), chatId)
		if err != nil {
			logRH.Error("Failed to load chat history", "error", err)
		} else {
			history = past
		}
	}

	answer, err := ragService.Ask(request.Context(), requestData.Question, adapter.ToAskOptions(requestData), history)
	if err != nil {
		logRH.Error("Ask failed", "error", err)
		status = http.StatusInternalServerError
		WriteErrorResponse(w, status, "Internal Server Error")
		return
	}

	if err := messageStore.TrySaveChat(request.Context(), chatId, adapter.ToExchange(answer)); err != nil {
		logRH.Error("Failed to save chat turn", "error", err)
	}

	writeJsonResponse(w, status, adapter.ToAskResponse(answer, chatId))
}

func IngestHandler(w http.ResponseWriter, request *http.Request) {
	if !validateContext(request.Context()) {
		logRH.Warn("Invalid Context by request", "remote", request.RemoteAddr)
		return
	}

	var requestData api.IngestRequest
	defer closeBody(request.Body)
	if err := json.NewDecoder(request.Body).Decode(&requestData); err != nil || len(requestData.Sources) == 0 {
		logRH.Warn("Bad Ingest Request", "error:", err)
		WriteErrorResponse(w, http.StatusBadRequest, "at least one source is required")
		return
	}

	sources, err := adapter.ToSources(requestData.Sources)
	if err != nil {
		logRH.Warn("Bad Ingest Request", "error:", err)
		WriteErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	added, err := ragService.Ingest(request.Context(), sources, requestData.ChunkSize, requestData.ChunkOverlap)
	if err != nil {
		logRH.Error("Ingest failed", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	writeJsonResponse(w, http.StatusOK, api.IngestResponse{Added: added})
}

func ClearIndexHandler(w http.ResponseWriter, request *http.Request) {
	if !validateContext(request.Context()) {
		logRH.Warn("Invalid Context by request", "remote", request.RemoteAddr)
		return
	}

	if err := ragService.ClearIndex(request.Context()); err != nil {
		logRH.Error("Clear index failed", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func closeBody(body io.ReadCloser) {
	if err := body.Close(); err != nil {
		logRH.Error("Couldn't close the request body", "error", err)
	}
}
