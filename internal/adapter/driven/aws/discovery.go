package aws

import (
	"context"
	"sort"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2Types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	elbTypes "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2/types"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	lambdaTypes "github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"go.uber.org/zap"

	"github.com/opticini/opticini-cli/internal/domain/entity"
)

type regionScanner func(ctx context.Context, profile, region string) ([]entity.CloudEndpoint, error)

// DiscoverEndpoints lists reachable endpoints in every region concurrently.
// A region or service that cannot be read is logged and skipped.
func (r *AWSRepositoryImpl) DiscoverEndpoints(ctx context.Context, profile string, regions []string) ([]entity.CloudEndpoint, error) {
	scanners := map[string]regionScanner{
		"elbv2":  r.loadBalancerEndpoints,
		"ec2":    r.instanceEndpoints,
		"lambda": r.functionURLEndpoints,
		"rds":    r.databaseEndpoints,
	}

	var (
		mu        sync.Mutex
		wg        sync.WaitGroup
		endpoints []entity.CloudEndpoint
	)

	for _, region := range regions {
		for name, scan := range scanners {
			wg.Add(1)
			go func(rgn, service string, scan regionScanner) {
				defer wg.Done()
				found, err := scan(ctx, profile, rgn)
				if err != nil {
					r.logger.Debug("endpoint discovery failed",
						zap.String("region", rgn), zap.String("service", service), zap.Error(err))
					return
				}
				mu.Lock()
				endpoints = append(endpoints, found...)
				mu.Unlock()
			}(region, name, scan)
		}
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.Slice(endpoints, func(i, j int) bool {
		a, b := endpoints[i], endpoints[j]
		if a.Region != b.Region {
			return a.Region < b.Region
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		return a.Name < b.Name
	})
	return endpoints, nil
}

func (r *AWSRepositoryImpl) loadBalancerEndpoints(ctx context.Context, profile, region string) ([]entity.CloudEndpoint, error) {
	client, err := r.getServiceClient(ctx, profile, region, "elbv2")
	if err != nil {
		return nil, err
	}
	elbv2Client := client.(*elasticloadbalancingv2.Client)

	var out []entity.CloudEndpoint
	p := elasticloadbalancingv2.NewDescribeLoadBalancersPaginator(elbv2Client, &elasticloadbalancingv2.DescribeLoadBalancersInput{})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return out, err
		}
		for _, lb := range page.LoadBalancers {
			if lb.Type == elbTypes.LoadBalancerTypeEnumGateway {
				continue
			}
			out = append(out, entity.CloudEndpoint{
				Kind:     entity.EndpointLoadBalancer,
				Region:   region,
				Name:     aws.ToString(lb.LoadBalancerName),
				Address:  aws.ToString(lb.DNSName),
				Public:   lb.Scheme == elbTypes.LoadBalancerSchemeEnumInternetFacing,
				Resource: aws.ToString(lb.LoadBalancerArn),
			})
		}
	}
	return out, nil
}

func (r *AWSRepositoryImpl) instanceEndpoints(ctx context.Context, profile, region string) ([]entity.CloudEndpoint, error) {
	client, err := r.getServiceClient(ctx, profile, region, "ec2")
	if err != nil {
		return nil, err
	}
	ec2Client := client.(*ec2.Client)

	var out []entity.CloudEndpoint
	p := ec2.NewDescribeInstancesPaginator(ec2Client, &ec2.DescribeInstancesInput{
		Filters: []ec2Types.Filter{
			{Name: aws.String("instance-state-name"), Values: []string{"running"}},
		},
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return out, err
		}
		for _, reservation := range page.Reservations {
			for _, instance := range reservation.Instances {
				address := aws.ToString(instance.PublicDnsName)
				if address == "" {
					address = aws.ToString(instance.PublicIpAddress)
				}
				if address == "" {
					continue
				}
				out = append(out, entity.CloudEndpoint{
					Kind:     entity.EndpointInstance,
					Region:   region,
					Name:     instanceName(instance),
					Address:  address,
					Public:   true,
					Resource: aws.ToString(instance.InstanceId),
				})
			}
		}
	}
	return out, nil
}

func instanceName(instance ec2Types.Instance) string {
	for _, tag := range instance.Tags {
		if aws.ToString(tag.Key) == "Name" && aws.ToString(tag.Value) != "" {
			return aws.ToString(tag.Value)
		}
	}
	return aws.ToString(instance.InstanceId)
}

func (r *AWSRepositoryImpl) functionURLEndpoints(ctx context.Context, profile, region string) ([]entity.CloudEndpoint, error) {
	client, err := r.getServiceClient(ctx, profile, region, "lambda")
	if err != nil {
		return nil, err
	}
	lambdaClient := client.(*lambda.Client)

	var out []entity.CloudEndpoint
	p := lambda.NewListFunctionsPaginator(lambdaClient, &lambda.ListFunctionsInput{})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return out, err
		}
		for _, fn := range page.Functions {
			urls, err := lambdaClient.ListFunctionUrlConfigs(ctx, &lambda.ListFunctionUrlConfigsInput{
				FunctionName: fn.FunctionName,
			})
			if err != nil {
				continue
			}
			for _, cfg := range urls.FunctionUrlConfigs {
				out = append(out, entity.CloudEndpoint{
					Kind:     entity.EndpointFunctionURL,
					Region:   region,
					Name:     aws.ToString(fn.FunctionName),
					Address:  aws.ToString(cfg.FunctionUrl),
					Public:   cfg.AuthType == lambdaTypes.FunctionUrlAuthTypeNone,
					Resource: aws.ToString(cfg.FunctionArn),
				})
			}
		}
	}
	return out, nil
}

func (r *AWSRepositoryImpl) databaseEndpoints(ctx context.Context, profile, region string) ([]entity.CloudEndpoint, error) {
	client, err := r.getServiceClient(ctx, profile, region, "rds")
	if err != nil {
		return nil, err
	}
	rdsClient := client.(*rds.Client)

	var out []entity.CloudEndpoint
	p := rds.NewDescribeDBInstancesPaginator(rdsClient, &rds.DescribeDBInstancesInput{})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return out, err
		}
		for _, db := range page.DBInstances {
			if db.Endpoint == nil {
				continue
			}
			out = append(out, entity.CloudEndpoint{
				Kind:     entity.EndpointDatabase,
				Region:   region,
				Name:     aws.ToString(db.DBInstanceIdentifier),
				Address:  aws.ToString(db.Endpoint.Address),
				Port:     aws.ToInt32(db.Endpoint.Port),
				Public:   aws.ToBool(db.PubliclyAccessible),
				Resource: aws.ToString(db.DBInstanceArn),
			})
		}
	}
	return out, nil
}

// GetLogGroupSummary counts log groups per region and lists those that keep
// data forever.
func (r *AWSRepositoryImpl) GetLogGroupSummary(ctx context.Context, profile string, regions []string) ([]entity.LogGroupSummary, error) {
	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		result []entity.LogGroupSummary
	)

	for _, region := range regions {
		wg.Add(1)
		go func(rgn string) {
			defer wg.Done()

			client, err := r.getServiceClient(ctx, profile, rgn, "cloudwatchlogs")
			if err != nil {
				return
			}
			cwlClient := client.(*cloudwatchlogs.Client)

			summary := entity.LogGroupSummary{Region: rgn}
			p := cloudwatchlogs.NewDescribeLogGroupsPaginator(cwlClient, &cloudwatchlogs.DescribeLogGroupsInput{
				Limit: aws.Int32(50),
			})
			for p.HasMorePages() {
				page, err := p.NextPage(ctx)
				if err != nil {
					r.logger.Debug("describe log groups failed", zap.String("region", rgn), zap.Error(err))
					return
				}
				for _, lg := range page.LogGroups {
					summary.Total++
					summary.StoredBytes += aws.ToInt64(lg.StoredBytes)
					if lg.RetentionInDays == nil {
						summary.NoRetention++
						summary.NoRetentionOf = append(summary.NoRetentionOf, aws.ToString(lg.LogGroupName))
					}
				}
			}
			if summary.Total == 0 {
				return
			}
			mu.Lock()
			result = append(result, summary)
			mu.Unlock()
		}(region)
	}
	wg.Wait()

	sort.Slice(result, func(i, j int) bool { return result[i].Region < result[j].Region })
	return result, nil
}
