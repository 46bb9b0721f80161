package diag

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	tst "github.com/evgeny-myasishchev/ledger.transactions-entry/pkg/internal/testing"

	"github.com/bxcodec/faker/v3"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func Test_logrusLogger_log(t *testing.T) {
	type args struct {
		ctx   context.Context
		level logrus.Level
		msg   string
		args  []interface{}
	}
	type testCase struct {
		name string
		args args
		want func(t *testing.T, actual map[string]interface{})
	}

	tests := []func() testCase{
		func() testCase {
			msg := faker.Sentence()
			return testCase{
				name: "regular msg",
				args: args{msg: msg, level: logrus.InfoLevel},
				want: func(t *testing.T, actual map[string]interface{}) {
					assert.Equal(t, msg, actual["msg"])
					assert.Equal(t, float64(1), actual["v"])
					assert.Equal(t, "info", actual["level"])
				},
			}
		},
		func() testCase {
			return testCase{
				name: "formatted msg",
				args: args{
					msg:   "Formatted msg %s",
					args:  []interface{}{"val1"},
					level: logrus.InfoLevel,
				},
				want: func(t *testing.T, actual map[string]interface{}) {
					assert.Equal(t, "Formatted msg val1", actual["msg"])
				},
			}
		},
		func() testCase {
			requestID := faker.Word()
			return testCase{
				name: "with requestID from context",
				args: args{
					ctx:   ContextWithRequestID(context.Background(), requestID),
					msg:   "Some msg",
					level: logrus.WarnLevel,
				},
				want: func(t *testing.T, actual map[string]interface{}) {
					contextData, ok := actual["context"].(map[string]interface{})
					if !assert.True(t, ok, "Should add context") {
						return
					}
					assert.Equal(t, requestID, contextData["requestID"])
				},
			}
		},
	}
	for _, ttFn := range tests {
		tt := ttFn()
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			logger := newLogrusLogger(&out)
			logger.log(tt.args.ctx, tt.args.level, tt.args.msg, tt.args.args...)

			actual := map[string]interface{}{}
			tst.JSONUnmarshalBuffer(&out, &actual)
			tt.want(t, actual)
		})
	}
}

func Test_Logger_Methods(t *testing.T) {
	type testCase struct {
		name      string
		wantLevel string
		method    func(logger Logger, msg string)
	}
	tests := []testCase{
		{name: "error", wantLevel: "error", method: func(l Logger, msg string) { l.Error(nil, msg) }},
		{name: "warn", wantLevel: "warning", method: func(l Logger, msg string) { l.Warn(nil, msg) }},
		{name: "info", wantLevel: "info", method: func(l Logger, msg string) { l.Info(nil, msg) }},
		{name: "debug", wantLevel: "debug", method: func(l Logger, msg string) { l.Debug(nil, msg) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			root := newLogrusLogger(&out)
			msg := faker.Sentence()
			err := errors.New(faker.Sentence())
			msgData := map[string]interface{}{
				"field1": faker.Word(),
				"field2": faker.Word(),
			}
			tt.method(root.WithError(err).WithData(msgData), msg)

			got := map[string]interface{}{}
			tst.JSONUnmarshalBuffer(&out, &got)
			assert.Equal(t, tt.wantLevel, got["level"])
			assert.Equal(t, msg, got["msg"])
			assert.Equal(t, err.Error(), got["error"])
			assert.Equal(t, msgData, got["msgData"])
		})
	}
}

func Test_loggingSystem_Setup(t *testing.T) {
	t.Run("level filters messages", func(t *testing.T) {
		var out bytes.Buffer
		system := loggingSystem{logger: newLogrusLogger(&out)}
		system.SetLogLevel("warn")
		system.logger.Info(nil, "hidden")
		assert.Equal(t, 0, out.Len())
		system.logger.Warn(nil, "visible")
		assert.Contains(t, out.String(), "visible")
	})

	t.Run("text mode and output", func(t *testing.T) {
		var out bytes.Buffer
		system := loggingSystem{logger: newLogrusLogger(&bytes.Buffer{})}
		system.SetLogMode("text")
		system.SetLogOutput(&out)
		msg := faker.Word()
		system.logger.Info(nil, msg)
		assert.True(t, strings.Contains(out.String(), "msg="+msg), out.String())
	})

	t.Run("panic on unknown mode", func(t *testing.T) {
		system := loggingSystem{logger: newLogrusLogger(&bytes.Buffer{})}
		assert.PanicsWithValue(t, "Unknown log mode: xml", func() {
			system.SetLogMode("xml")
		})
	})
}
