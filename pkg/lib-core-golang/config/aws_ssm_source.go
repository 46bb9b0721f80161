package config

import (
	"context"
	"net/http"
	"os"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/ssm"

	"github.com/evgeny-myasishchev/ledger.transactions-entry/pkg/lib-core-golang/diag"
	"github.com/evgeny-myasishchev/ledger.transactions-entry/pkg/version"
)

// SSM rejects GetParameters calls with more names than that
const ssmMaxNamesPerCall = 10

type ssmClient interface {
	GetParametersWithContext(ctx aws.Context, input *ssm.GetParametersInput, opts ...request.Option) (*ssm.GetParametersOutput, error)
}

type ssmClientAuthTokenMiddleware func(req *http.Request) (*http.Response, error)

func (rt ssmClientAuthTokenMiddleware) RoundTrip(req *http.Request) (*http.Response, error) {
	return rt(req)
}

func newSSMClientAuthTokenMiddleware(authToken string, next http.RoundTripper) http.RoundTripper {
	return ssmClientAuthTokenMiddleware(func(req *http.Request) (*http.Response, error) {
		req.Header.Add(awsSSMEndpointTokenHeaderName, authToken)
		req.Header.Add("x-requested-by", version.AppName+"("+version.Version+")")
		return next.RoundTrip(req)
	})
}

func newSSMClient() (ssmClient, error) {
	s, err := session.NewSession()
	if err != nil {
		return nil, err
	}

	clientCfg := aws.NewConfig()
	if configURL := os.Getenv(awsSSMEndpointURLVar); configURL != "" {
		logger.Info(nil, "Using service config: %v", configURL)
		clientCfg = clientCfg.
			WithEndpoint(configURL).
			WithHTTPClient(&http.Client{
				Transport: newSSMClientAuthTokenMiddleware(
					os.Getenv(awsSSMEndpointTokenVar),
					http.DefaultTransport,
				),
			})
	}

	return ssm.New(s, clientCfg), nil
}

type awsSSMSource struct {
	appEnv    AppEnv
	ssmClient ssmClient
}

// GetParameters resolves each param by two names:
// /<env>/<service>/<key> and /<env>/<cluster>/<service>/<key>.
// Cluster specific value wins if both are present
func (s *awsSSMSource) GetParameters(ctx context.Context, params []paramID) (map[paramID]interface{}, error) {
	envName := s.appEnv.Name
	clusterName := s.appEnv.ClusterName

	names := make([]*string, 0, len(params)*2)
	serviceScoped := make(map[string]paramID, len(params))
	clusterScoped := make(map[string]paramID, len(params))
	for _, p := range params {
		serviceScopedName := "/" + envName + "/" + p.service + "/" + p.key
		names = append(names, aws.String(serviceScopedName))
		serviceScoped[serviceScopedName] = p
		if clusterName != "" {
			clusterScopedName := "/" + envName + "/" + clusterName + "/" + p.service + "/" + p.key
			names = append(names, aws.String(clusterScopedName))
			clusterScoped[clusterScopedName] = p
		}
	}
	logger.WithData(diag.MsgData{"paths": names}).Debug(ctx, "Attempting to get SSM parameters")

	fetched := make([]*ssm.Parameter, 0, len(names))
	for start := 0; start < len(names); start += ssmMaxNamesPerCall {
		end := start + ssmMaxNamesPerCall
		if end > len(names) {
			end = len(names)
		}
		output, err := s.ssmClient.GetParametersWithContext(ctx, &ssm.GetParametersInput{
			Names:          names[start:end],
			WithDecryption: aws.Bool(true),
		})
		if err != nil {
			return nil, err
		}
		fetched = append(fetched, output.Parameters...)
	}

	result := make(map[paramID]interface{}, len(params))
	for _, awsParam := range fetched {
		if p, ok := serviceScoped[aws.StringValue(awsParam.Name)]; ok {
			result[p] = aws.StringValue(awsParam.Value)
		}
	}
	for _, awsParam := range fetched {
		if p, ok := clusterScoped[aws.StringValue(awsParam.Name)]; ok {
			result[p] = aws.StringValue(awsParam.Value)
		}
	}
	return result, nil
}

// AwsSSMOpt is an option of an SSM config source
type AwsSSMOpt func(s *awsSSMSource)

// AwsSSMOpts are options of an SSM source
var AwsSSMOpts = struct {
	// WithAppEnv option will set the app env
	WithAppEnv func(appEnv AppEnv) AwsSSMOpt

	withSSMClient func(client ssmClient) AwsSSMOpt
}{
	WithAppEnv: func(appEnv AppEnv) AwsSSMOpt {
		return func(s *awsSSMSource) {
			s.appEnv = appEnv
		}
	},
	withSSMClient: func(client ssmClient) AwsSSMOpt {
		return func(s *awsSSMSource) {
			s.ssmClient = client
		}
	},
}

// NewAWSSSMSource creates a source that reads params from aws SSM.
func NewAWSSSMSource(opts ...AwsSSMOpt) SourceFactory {
	return func() (Source, error) {
		source := &awsSSMSource{}
		for _, opt := range opts {
			opt(source)
		}
		if source.ssmClient == nil {
			client, err := newSSMClient()
			if err != nil {
				return nil, err
			}
			source.ssmClient = client
		}
		return source, nil
	}
}
