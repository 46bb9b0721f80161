package config

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/ioutil"
	"math/rand"
	"os"
	"path"
	"testing"
	"time"

	"github.com/bxcodec/faker/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockSource struct {
	err        error
	parameters map[paramID]interface{}
	mock.Mock
}

func (s *mockSource) GetParameters(ctx context.Context, params []paramID) (map[paramID]interface{}, error) {
	if len(s.ExpectedCalls) > 0 {
		args := s.Called(params)
		return args.Get(0).(map[paramID]interface{}), args.Error(1)
	}
	return s.parameters, s.err
}

func TestNewAppEnv(t *testing.T) {
	type testCase struct {
		name  string
		opts  []appEnvOpt
		setup func(t *testing.T)
		want  func(serviceName string) AppEnv
	}
	noTestFlag := withLookupFlag(func(name string) *flag.Flag { return nil })
	tests := []func() testCase{
		func() testCase {
			return testCase{
				name: "default",
				opts: []appEnvOpt{noTestFlag, WithDotEnv()},
				want: func(serviceName string) AppEnv {
					return AppEnv{Name: "dev", ServiceName: serviceName}
				},
			}
		},
		func() testCase {
			return testCase{
				name: "test",
				opts: []appEnvOpt{WithDotEnv()},
				want: func(serviceName string) AppEnv {
					return AppEnv{Name: "test", ServiceName: serviceName}
				},
			}
		},
		func() testCase {
			appEnv := "app-env-" + faker.Word()
			facet := "app-env-facet-" + faker.Word()
			clusterName := "cluster-name-" + faker.Word()
			return testCase{
				name: "from env",
				opts: []appEnvOpt{WithDotEnv()},
				setup: func(t *testing.T) {
					setEnv(t, appEnvVar, appEnv)
					setEnv(t, facetVar, facet)
					setEnv(t, clusterNameVar, clusterName)
				},
				want: func(serviceName string) AppEnv {
					return AppEnv{Name: appEnv, Facet: facet, ClusterName: clusterName, ServiceName: serviceName}
				},
			}
		},
		func() testCase {
			appEnv := "dotenv-env-" + faker.Word()
			dotEnvFile := path.Join(os.TempDir(), "config-test-"+faker.Word()+".env")
			return testCase{
				name: "from dotenv file",
				setup: func(t *testing.T) {
					if err := ioutil.WriteFile(dotEnvFile, []byte(appEnvVar+"="+appEnv+"\n"), 0644); err != nil {
						panic(err)
					}
					t.Cleanup(func() {
						os.Remove(dotEnvFile)
						os.Unsetenv(appEnvVar)
					})
				},
				opts: []appEnvOpt{WithDotEnv(dotEnvFile, dotEnvFile+"-missing")},
				want: func(serviceName string) AppEnv {
					return AppEnv{Name: appEnv, ServiceName: serviceName}
				},
			}
		},
	}
	for _, tt := range tests {
		tt := tt()
		t.Run(tt.name, func(t *testing.T) {
			serviceName := "svc-" + faker.Word()
			if tt.setup != nil {
				tt.setup(t)
			}
			got := NewAppEnv(serviceName, tt.opts...)
			assert.Equal(t, tt.want(serviceName), got)
		})
	}
}

func setEnv(t *testing.T, name, value string) {
	prev, hadPrev := os.LookupEnv(name)
	if err := os.Setenv(name, value); err != nil {
		panic(err)
	}
	t.Cleanup(func() {
		if hadPrev {
			os.Setenv(name, prev)
		} else {
			os.Unsetenv(name)
		}
	})
}

func TestLoadInitialValues(t *testing.T) {
	rand.Seed(time.Now().UnixNano())
	type testCase struct {
		name    string
		sources []sourceBinding
		assert  func(t *testing.T, cfg ServiceConfig, err error)
	}
	tests := []func() testCase{
		func() testCase {
			intParam := newIntParam("int-param-"+faker.Word(), "")
			strParam := newStringParam("str-param-"+faker.Word(), "")
			boolParam := newBoolParam("bool-param-"+faker.Word(), "svc-"+faker.Word())

			params1 := map[paramID]interface{}{
				intParam.id(): rand.Int(),
				strParam.id(): faker.Word(),
			}
			params2 := map[paramID]interface{}{
				boolParam.id(): rand.Intn(2) == 1,
			}
			return testCase{
				name: "load and init params",
				sources: []sourceBinding{
					{name: "src1", params: []param{intParam, strParam}, source: &mockSource{parameters: params1}},
					{name: "src2", params: []param{boolParam}, source: &mockSource{parameters: params2}},
				},
				assert: func(t *testing.T, cfg ServiceConfig, err error) {
					if !assert.NoError(t, err) {
						return
					}
					assert.Equal(t, params1[intParam.id()], cfg.IntParam(intParam).Value())
					assert.Equal(t, params1[strParam.id()], cfg.StringParam(strParam).Value())
					assert.Equal(t, params2[boolParam.id()], cfg.BoolParam(boolParam).Value())
				},
			}
		},
		func() testCase {
			intParam := newIntParam("int-param-"+faker.Word(), "")
			strParam := newStringParam("str-param-"+faker.Word(), "")
			return testCase{
				name: "fail if requested params are missing",
				sources: []sourceBinding{{
					params: []param{intParam, strParam},
					source: &mockSource{parameters: map[paramID]interface{}{intParam.id(): rand.Int()}},
				}},
				assert: func(t *testing.T, cfg ServiceConfig, err error) {
					assert.EqualError(t, err, fmt.Sprintf("Parameter %v not found", strParam.id()))
				},
			}
		},
		func() testCase {
			intParam := newIntParam("int-param-"+faker.Word(), "")
			badInt := faker.Word()
			return testCase{
				name: "fail if some params are of a bad type",
				sources: []sourceBinding{{
					params: []param{intParam},
					source: &mockSource{parameters: map[paramID]interface{}{intParam.id(): badInt}},
				}},
				assert: func(t *testing.T, cfg ServiceConfig, err error) {
					assert.EqualError(t, err, fmt.Sprintf(
						"Failed to set value for parameter %v: Expected int value but got: %v(%[2]T)",
						intParam.id(), badInt,
					))
				},
			}
		},
		func() testCase {
			sourceErr := errors.New("Failed to get params: " + faker.Word())
			return testCase{
				name: "fail if source failed",
				sources: []sourceBinding{{
					params: []param{newStringParam("str-param-"+faker.Word(), "")},
					source: &mockSource{err: sourceErr},
				}},
				assert: func(t *testing.T, cfg ServiceConfig, err error) {
					assert.Equal(t, sourceErr, err)
				},
			}
		},
		func() testCase {
			intParam := newIntParam("int-param-"+faker.Word(), "")
			return testCase{
				name: "panic if getting not existing param",
				sources: []sourceBinding{{
					params: []param{},
					source: &mockSource{parameters: map[paramID]interface{}{}},
				}},
				assert: func(t *testing.T, cfg ServiceConfig, err error) {
					if !assert.NoError(t, err) {
						return
					}
					assert.PanicsWithValue(t, fmt.Sprintf("Unknown parameter: %v", intParam.id()), func() {
						cfg.IntParam(intParam)
					})
				},
			}
		},
	}
	for _, tt := range tests {
		tt := tt()
		t.Run(tt.name, func(t *testing.T) {
			opts := make([]ServiceConfigOpt, 0, len(tt.sources))
			for _, source := range tt.sources {
				opts = append(opts, WithSource(source))
			}
			cfg := newServiceConfig(opts...)
			err := loadInitialValues(cfg)
			tt.assert(t, cfg, err)
		})
	}
}

func TestRefresh(t *testing.T) {
	type testCase struct {
		name    string
		sources []sourceBinding
		assert  func(t *testing.T, refresh func(), cfg ServiceConfig)
	}
	tests := []func() testCase{
		func() testCase {
			param1 := newStringParam("param1-"+faker.Word(), "")
			param2 := newIntParam("param2-"+faker.Word(), "")
			initialParam2 := rand.Int()
			params := map[paramID]interface{}{
				param1.id(): "initial-val1-" + faker.Word(),
				param2.id(): initialParam2,
			}
			return testCase{
				name: "refresh values and ignore bad ones",
				sources: []sourceBinding{
					{params: []param{param1, param2}, source: &mockSource{parameters: params}},
				},
				assert: func(t *testing.T, refresh func(), cfg ServiceConfig) {
					params[param1.id()] = "new-val1-" + faker.Word()
					params[param2.id()] = "not-an-int-" + faker.Word()
					refresh()
					assert.Equal(t, params[param1.id()], cfg.StringParam(param1).Value())
					assert.Equal(t, initialParam2, cfg.IntParam(param2).Value())
				},
			}
		},
		func() testCase {
			param1 := newStringParam("param1-"+faker.Word(), "")
			param2 := newStringParam("param2-"+faker.Word(), "")
			param1Val := "initial-val1-" + faker.Word()
			mockSrc1 := &mockSource{parameters: map[paramID]interface{}{param1.id(): param1Val}}
			params2 := map[paramID]interface{}{param2.id(): "initial-val2-" + faker.Word()}
			return testCase{
				name: "try next source if refreshing failed",
				sources: []sourceBinding{
					{name: "src1", params: []param{param1}, source: mockSrc1},
					{name: "src2", params: []param{param2}, source: &mockSource{parameters: params2}},
				},
				assert: func(t *testing.T, refresh func(), cfg ServiceConfig) {
					mockSrc1.On("GetParameters", mock.Anything).
						Return(map[paramID]interface{}{}, errors.New(faker.Sentence()))
					params2[param2.id()] = "new-val2-" + faker.Word()
					refresh()
					assert.Equal(t, param1Val, cfg.StringParam(param1).Value())
					assert.Equal(t, params2[param2.id()], cfg.StringParam(param2).Value())
				},
			}
		},
	}

	for _, tt := range tests {
		tt := tt()
		t.Run(tt.name, func(t *testing.T) {
			refreshChannel := make(chan time.Time)
			refreshed := make(chan bool)
			stop := make(chan bool)
			opts := make([]ServiceConfigOpt, 0, len(tt.sources)+3)
			for _, source := range tt.sources {
				opts = append(opts, WithSource(source))
			}
			opts = append(opts,
				withTicker(&time.Ticker{C: refreshChannel}),
				withRefreshed(refreshed),
				withStop(stop),
			)
			cfg, err := Load(opts...)
			if !assert.NoError(t, err) {
				return
			}
			defer func() {
				stop <- true
			}()
			tt.assert(t, func() {
				refreshChannel <- time.Now()
				<-refreshed
			}, cfg)
		})
	}
}
