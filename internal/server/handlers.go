package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/daylab/jobscout/internal/engine"
	"github.com/daylab/jobscout/internal/engine/saramin"
)

// progressPayload is one SSE progress event body.
type progressPayload struct {
	Step    string `json:"step"`
	Message string `json:"message"`
}

// completePayload is the terminal success event body.
type completePayload struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// companySearch streams progress events for a company search run, then
// exactly one complete or error event. Missing name is rejected before
// any network work.
func (s *Server) companySearch(c *gin.Context) {
	name := strings.TrimSpace(c.Query("name"))
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name query parameter is required"})
		return
	}

	streamRun(c, func(ctx *gin.Context, sink engine.Sink) (any, error) {
		res, err := s.pipeline.SearchCompany(ctx.Request.Context(), name, sink)
		if err != nil {
			return nil, err
		}
		return res, nil
	})
}

// postingDetail streams progress for one posting's detail resolution,
// extraction and course matching. Missing link is rejected up front.
func (s *Server) postingDetail(c *gin.Context) {
	link := strings.TrimSpace(c.Query("link"))
	if link == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "link query parameter is required"})
		return
	}
	external, _ := strconv.ParseBool(c.Query("external"))
	req := engine.DetailRequest{
		Link:        link,
		Title:       strings.TrimSpace(c.Query("title")),
		IsExternal:  external,
		ExternalURL: strings.TrimSpace(c.Query("externalUrl")),
	}

	streamRun(c, func(ctx *gin.Context, sink engine.Sink) (any, error) {
		res, err := s.pipeline.PostingDetail(ctx.Request.Context(), req, sink)
		if err != nil {
			return nil, err
		}
		return res, nil
	})
}

// streamRun runs one pipeline operation in a goroutine and relays its
// progress events as SSE until the terminal complete or error event. The
// sink is closed by the worker, which ends the relay loop; a client that
// disconnects early just stops receiving.
func streamRun(c *gin.Context, run func(*gin.Context, engine.Sink) (any, error)) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	sink := engine.NewChannelSink(16)

	type outcome struct {
		data any
		err  error
	}
	done := make(chan outcome, 1)
	go func() {
		data, err := run(c, sink)
		sink.Close()
		done <- outcome{data: data, err: err}
	}()

	for ev := range sink.Events() {
		c.SSEvent("progress", progressPayload{Step: string(ev.Step), Message: ev.Message})
		c.Writer.Flush()
	}

	out := <-done
	if out.err != nil {
		c.SSEvent("error", gin.H{"message": userMessage(out.err)})
	} else {
		c.SSEvent("complete", completePayload{Success: true, Data: out.data})
	}
	c.Writer.Flush()
}

// userMessage maps domain errors to end-user Korean messages; everything
// else passes through.
func userMessage(err error) string {
	switch {
	case errors.Is(err, saramin.ErrCompanyNotFound):
		return "기업 정보를 찾을 수 없습니다. 기업명을 다시 확인해 주세요."
	case errors.Is(err, engine.ErrDetailUnavailable):
		return "공고 상세 내용을 가져올 수 없습니다."
	default:
		return err.Error()
	}
}
