// Package psql serves the question pipeline over the PostgreSQL wire
// protocol: every simple query is treated as a natural-language question.
package psql

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
	wire "github.com/jeroenrinzema/psql-wire"
	"github.com/jeroenrinzema/psql-wire/codes"
	pgerror "github.com/jeroenrinzema/psql-wire/errors"
	"github.com/jeroenrinzema/psql-wire/pkg/buffer"
	"github.com/jeroenrinzema/psql-wire/pkg/types"

	"github.com/malbeclabs/nlquery/pkg/metrics"
	"github.com/malbeclabs/nlquery/pkg/pipeline"
)

// AnswerPrefix switches a question to a single-row reply carrying the prose
// answer instead of the result rows.
const AnswerPrefix = "answer:"

// serverParameters are announced to every client during the handshake. pgx
// refuses simple-protocol queries unless standard_conforming_strings is on.
var serverParameters = wire.Parameters{
	"standard_conforming_strings": "on",
}

type Server struct {
	log *slog.Logger
	cfg Config
	srv *wire.Server
}

func New(cfg Config) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate psql config: %w", err)
	}

	s := &Server{log: cfg.Logger, cfg: cfg}

	if len(cfg.Accounts) > 0 {
		s.log.Info("psql: authentication enabled", "account_count", len(cfg.Accounts))
	} else {
		s.log.Info("psql: authentication disabled (no accounts configured)")
	}

	srv, err := wire.NewServer(
		s.queryHandler,
		wire.Logger(s.log),
		wire.SessionAuthStrategy(authStrategy(s.log, cfg.Accounts)),
		wire.GlobalParameters(serverParameters),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres wire server: %w", err)
	}
	s.srv = srv
	return s, nil
}

func (s *Server) Serve(listener net.Listener) error {
	return s.srv.Serve(listener)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func authStrategy(log *slog.Logger, accounts map[string]string) wire.AuthStrategy {
	return func(ctx context.Context, writer *buffer.Writer, reader *buffer.Reader) (context.Context, error) {
		params := wire.ClientParameters(ctx)
		username := params[wire.ParamUsername]

		if len(accounts) == 0 {
			writer.Start(types.ServerAuth)
			writer.AddInt32(0) // authOK
			if err := writer.End(); err != nil {
				return ctx, err
			}
			log.Debug("psql: authentication disabled, allowing connection", "username", username)
			return ctx, nil
		}

		writer.Start(types.ServerAuth)
		writer.AddInt32(3) // authClearTextPassword
		if err := writer.End(); err != nil {
			return ctx, err
		}

		t, _, err := reader.ReadTypedMsg()
		if err != nil {
			return ctx, err
		}
		if t != types.ClientPassword {
			return ctx, fmt.Errorf("unexpected password message type: %v", t)
		}
		password, err := reader.GetString()
		if err != nil {
			return ctx, err
		}

		expected, ok := accounts[username]
		if !ok || password != expected {
			log.Debug("psql: authentication failed", "username", username)
			authErr := pgerror.WithCode(errors.New("invalid username/password"), codes.InvalidPassword)
			if err := wire.ErrorCode(writer, authErr); err != nil {
				return ctx, err
			}
			return ctx, authErr
		}

		writer.Start(types.ServerAuth)
		writer.AddInt32(0)
		return ctx, writer.End()
	}
}

func (s *Server) queryHandler(ctx context.Context, query string) (wire.PreparedStatements, error) {
	s.log.Debug("psql: incoming query", "query", query)

	trimmed := strings.TrimSpace(query)
	if trimmed == "" || trimmed == ";" {
		return wire.Prepared(wire.NewStatement(
			func(ctx context.Context, writer wire.DataWriter, parameters []wire.Parameter) error {
				return writer.Complete("")
			},
			wire.WithColumns(wire.Columns{}),
		)), nil
	}

	if strings.ToLower(strings.Join(strings.Fields(query), " ")) == "-- ping" {
		return staticRows(wire.Columns{{Name: "pong", Oid: pgtype.TextOID}}, [][]any{{"pong"}}), nil
	}

	question := trimmed
	answerMode := false
	if len(question) >= len(AnswerPrefix) && strings.EqualFold(question[:len(AnswerPrefix)], AnswerPrefix) {
		answerMode = true
		question = strings.TrimSpace(question[len(AnswerPrefix):])
	}

	out := s.cfg.Runner.Run(ctx, question)
	if !out.Success {
		metrics.WireQueriesTotal.WithLabelValues("error").Inc()
		return nil, outcomeError(out)
	}
	metrics.WireQueriesTotal.WithLabelValues("success").Inc()

	if answerMode {
		sqlQuery := ""
		if out.SQLQuery != nil {
			sqlQuery = *out.SQLQuery
		}
		columns := wire.Columns{
			{Name: "natural_response", Oid: pgtype.TextOID},
			{Name: "sql_query", Oid: pgtype.TextOID},
			{Name: "row_count", Oid: pgtype.Int8OID},
		}
		return staticRows(columns, [][]any{{out.NaturalResponse, sqlQuery, int64(out.RowCount)}}), nil
	}

	columns, rows := encodeResults(out)
	return staticRows(columns, rows), nil
}

func staticRows(columns wire.Columns, rows [][]any) wire.PreparedStatements {
	return wire.Prepared(wire.NewStatement(
		func(ctx context.Context, writer wire.DataWriter, parameters []wire.Parameter) error {
			for _, row := range rows {
				if err := writer.Row(row); err != nil {
					return err
				}
			}
			return writer.Complete("SELECT")
		},
		wire.WithColumns(columns),
	))
}

// outcomeError carries the user-safe apology to the client with an SQLSTATE
// that reflects the failed stage.
func outcomeError(out pipeline.Outcome) error {
	code := codes.Internal
	switch err := out.Err(); {
	case errors.Is(err, pipeline.ErrTranslationMalformed):
		code = codes.Syntax
	case errors.Is(err, pipeline.ErrExecution):
		code = codes.DataException
	}
	return pgerror.WithCode(errors.New(out.NaturalResponse), code)
}
