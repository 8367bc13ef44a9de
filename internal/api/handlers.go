package api

import (
	"encoding/hex"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourorg/attendzk/internal/verify"
)

// errorBody is the structured rejection payload: machine-readable code plus
// human-readable message, nothing internal.
func errorBody(code verify.ErrorCode, msg string) gin.H {
	return gin.H{"error": msg, "code": code}
}

func (s *Server) handleVerify(c *gin.Context) {
	var sub verify.Submission
	if err := c.ShouldBindJSON(&sub); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(verify.CodeInvalidProofEncoding, "request body is not valid JSON"))
		return
	}

	wallet := c.GetString(walletContextKey)
	res, err := s.svc.Accept(c.Request.Context(), wallet, sub)
	if err != nil {
		var verr *verify.Error
		if errors.As(err, &verr) {
			c.JSON(verr.Status, errorBody(verr.Code, verr.Message))
			return
		}
		s.log.Error().Err(err).Msg("unexpected acceptance failure")
		c.JSON(http.StatusInternalServerError, errorBody(verify.CodeStorageFailure, "internal error"))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleGetRecord(c *gin.Context) {
	rec, err := s.svc.Record(c.Param("id"))
	if err != nil {
		if errors.Is(err, verify.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, errorBody("NOT_FOUND", "no verification record with that id"))
			return
		}
		c.JSON(http.StatusInternalServerError, errorBody(verify.CodeStorageFailure, "internal error"))
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) handleGetHashes(c *gin.Context) {
	hashes, err := s.hashes.GetHashes(c.Request.Context(), []byte(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorBody("LEDGER_READ_FAILED", "could not read the hash ledger"))
		return
	}
	out := make([]string, 0, len(hashes))
	for _, h := range hashes {
		out = append(out, hex.EncodeToString(h[:]))
	}
	c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "hashes": out})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
