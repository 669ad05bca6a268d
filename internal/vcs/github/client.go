package github

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v80/github"
	"github.com/thomas-vilte/gh-assist/internal/errors"
	"github.com/thomas-vilte/gh-assist/internal/httpclient"
	"github.com/thomas-vilte/gh-assist/internal/logger"
	"github.com/thomas-vilte/gh-assist/internal/models"
	"github.com/thomas-vilte/gh-assist/internal/vcs"
	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"
)

var _ vcs.Client = (*Client)(nil)

const (
	maxRateLimitAttempts = 3
	maxRateLimitWait     = 60 * time.Second
	defaultPerPage       = 100
	recentCommitsCount   = 10
)

type PullRequestsService interface {
	ListFiles(ctx context.Context, owner, repo string, number int, opts *github.ListOptions) ([]*github.CommitFile, *github.Response, error)
	Get(ctx context.Context, owner, repo string, number int) (*github.PullRequest, *github.Response, error)
	Edit(ctx context.Context, owner, repo string, number int, pr *github.PullRequest) (*github.PullRequest, *github.Response, error)
	List(ctx context.Context, owner, repo string, opts *github.PullRequestListOptions) ([]*github.PullRequest, *github.Response, error)
	Create(ctx context.Context, owner, repo string, pr *github.NewPullRequest) (*github.PullRequest, *github.Response, error)
}

type IssuesService interface {
	Get(ctx context.Context, owner, repo string, number int) (*github.Issue, *github.Response, error)
	Create(ctx context.Context, owner, repo string, issue *github.IssueRequest) (*github.Issue, *github.Response, error)
	CreateComment(ctx context.Context, owner, repo string, number int, comment *github.IssueComment) (*github.IssueComment, *github.Response, error)
	AddLabelsToIssue(ctx context.Context, owner, repo string, number int, labels []string) ([]*github.Label, *github.Response, error)
}

type RepositoriesService interface {
	Get(ctx context.Context, owner, repo string) (*github.Repository, *github.Response, error)
	Create(ctx context.Context, org string, repo *github.Repository) (*github.Repository, *github.Response, error)
	ListByAuthenticatedUser(ctx context.Context, opts *github.RepositoryListByAuthenticatedUserOptions) ([]*github.Repository, *github.Response, error)
	ListCommits(ctx context.Context, owner, repo string, opts *github.CommitsListOptions) ([]*github.RepositoryCommit, *github.Response, error)
}

type UsersService interface {
	Get(ctx context.Context, user string) (*github.User, *github.Response, error)
}

// Client talks to the GitHub REST API through go-github.
type Client struct {
	prService     PullRequestsService
	issuesService IssuesService
	repoService   RepositoriesService
	usersService  UsersService

	baseURL  string
	paginate bool
	perPage  int

	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time
}

type Option func(*Client)

// WithPagination controls whether changed files are read from every page.
// With paginate off only the first page of perPage files is returned.
func WithPagination(paginate bool, perPage int) Option {
	return func(c *Client) {
		c.paginate = paginate
		if perPage > 0 {
			c.perPage = perPage
		}
	}
}

// WithBaseURL points the client at another API root (GitHub Enterprise, tests).
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

func newClient(opts []Option) *Client {
	c := &Client{
		paginate: true,
		perPage:  defaultPerPage,
		sleep:    sleepContext,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewClient builds a client authenticated with token. An empty token yields an
// anonymous client, which only works for public reads.
func NewClient(token string, timeout time.Duration, opts ...Option) (*Client, error) {
	c := newClient(opts)

	httpClient := httpclient.New(timeout)
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		base := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient)
		httpClient = oauth2.NewClient(base, ts)
		httpClient.Timeout = timeout
	}

	gh := github.NewClient(httpClient)
	if c.baseURL != "" {
		raw := c.baseURL
		if !strings.HasSuffix(raw, "/") {
			raw += "/"
		}
		u, err := url.Parse(raw)
		if err != nil {
			return nil, errors.ErrGitHubRequest.WithError(err).WithContext("base_url", c.baseURL)
		}
		gh.BaseURL = u
	}

	c.prService = gh.PullRequests
	c.issuesService = gh.Issues
	c.repoService = gh.Repositories
	c.usersService = gh.Users
	return c, nil
}

func NewClientWithServices(
	prService PullRequestsService,
	issuesService IssuesService,
	repoService RepositoriesService,
	usersService UsersService,
	opts ...Option,
) *Client {
	c := newClient(opts)
	c.prService = prService
	c.issuesService = issuesService
	c.repoService = repoService
	c.usersService = usersService
	return c
}

func (c *Client) GetPullRequestChangedFiles(ctx context.Context, repo models.RepoRef, number int) ([]models.ChangedFile, error) {
	log := logger.FromContext(ctx)
	opts := &github.ListOptions{PerPage: c.perPage}

	var files []models.ChangedFile
	for {
		page, resp, err := withRateLimitRetry(ctx, c, "list PR files", func() ([]*github.CommitFile, *github.Response, error) {
			return c.prService.ListFiles(ctx, repo.Owner, repo.Name, number, opts)
		})
		if err != nil {
			return nil, c.mapError("list PR files", repo, errors.ErrPullRequestNotFound, resp, err).
				WithContext("pr_number", number)
		}

		for _, f := range page {
			files = append(files, models.ChangedFile{
				Filename:  f.GetFilename(),
				Status:    f.GetStatus(),
				Additions: f.GetAdditions(),
				Deletions: f.GetDeletions(),
				Patch:     f.GetPatch(),
			})
		}

		if !c.paginate || resp == nil || resp.NextPage == 0 {
			if resp != nil && resp.NextPage != 0 {
				log.Debug("pagination disabled, remaining PR files omitted",
					"repo", repo.String(),
					"pr_number", number,
					"next_page", resp.NextPage)
			}
			break
		}
		opts.Page = resp.NextPage
	}

	log.Debug("pull request files fetched",
		"repo", repo.String(),
		"pr_number", number,
		"files", len(files))

	return files, nil
}

func (c *Client) GetPullRequest(ctx context.Context, repo models.RepoRef, number int) (models.PullRequest, error) {
	pr, resp, err := withRateLimitRetry(ctx, c, "get PR", func() (*github.PullRequest, *github.Response, error) {
		return c.prService.Get(ctx, repo.Owner, repo.Name, number)
	})
	if err != nil {
		return models.PullRequest{}, c.mapError("get PR", repo, errors.ErrPullRequestNotFound, resp, err).
			WithContext("pr_number", number)
	}
	return toPullRequest(pr), nil
}

// PostPullRequestDescription replaces the body of the pull request.
func (c *Client) PostPullRequestDescription(ctx context.Context, repo models.RepoRef, number int, text string) error {
	_, resp, err := withRateLimitRetry(ctx, c, "update PR", func() (*github.PullRequest, *github.Response, error) {
		return c.prService.Edit(ctx, repo.Owner, repo.Name, number, &github.PullRequest{Body: github.Ptr(text)})
	})
	if err != nil {
		return c.mapError("update PR", repo, errors.ErrPullRequestNotFound, resp, err).
			WithContext("pr_number", number)
	}

	logger.Info(ctx, "pull request description updated",
		"repo", repo.String(),
		"pr_number", number)
	return nil
}

// PostReviewComment adds a conversation comment to the pull request.
func (c *Client) PostReviewComment(ctx context.Context, repo models.RepoRef, number int, text string) error {
	_, resp, err := withRateLimitRetry(ctx, c, "comment PR", func() (*github.IssueComment, *github.Response, error) {
		return c.issuesService.CreateComment(ctx, repo.Owner, repo.Name, number, &github.IssueComment{Body: github.Ptr(text)})
	})
	if err != nil {
		return c.mapError("comment PR", repo, errors.ErrPullRequestNotFound, resp, err).
			WithContext("pr_number", number)
	}

	logger.Info(ctx, "review comment posted",
		"repo", repo.String(),
		"pr_number", number)
	return nil
}

func (c *Client) ListPullRequests(ctx context.Context, repo models.RepoRef, state string, limit int) ([]models.PullRequest, error) {
	if state == "" {
		state = "open"
	}
	opts := &github.PullRequestListOptions{
		State:       state,
		ListOptions: github.ListOptions{PerPage: pageSize(limit, c.perPage)},
	}

	var prs []models.PullRequest
	for {
		page, resp, err := withRateLimitRetry(ctx, c, "list PRs", func() ([]*github.PullRequest, *github.Response, error) {
			return c.prService.List(ctx, repo.Owner, repo.Name, opts)
		})
		if err != nil {
			return nil, c.mapError("list PRs", repo, errors.ErrRepositoryNotFound, resp, err)
		}

		for _, pr := range page {
			prs = append(prs, toPullRequest(pr))
			if limit > 0 && len(prs) >= limit {
				return prs, nil
			}
		}

		if resp == nil || resp.NextPage == 0 {
			return prs, nil
		}
		opts.Page = resp.NextPage
	}
}

func (c *Client) CreatePullRequest(ctx context.Context, repo models.RepoRef, pr models.NewPullRequest) (models.PullRequest, error) {
	created, resp, err := withRateLimitRetry(ctx, c, "create PR", func() (*github.PullRequest, *github.Response, error) {
		return c.prService.Create(ctx, repo.Owner, repo.Name, &github.NewPullRequest{
			Title: github.Ptr(pr.Title),
			Head:  github.Ptr(pr.Head),
			Base:  github.Ptr(pr.Base),
			Body:  github.Ptr(pr.Body),
		})
	})
	if err != nil {
		return models.PullRequest{}, c.mapError("create PR", repo, errors.ErrRepositoryNotFound, resp, err).
			WithContext("head", pr.Head).
			WithContext("base", pr.Base)
	}

	logger.Info(ctx, "pull request created",
		"repo", repo.String(),
		"pr_number", created.GetNumber())
	return toPullRequest(created), nil
}

// ListRepositories returns the authenticated user's repositories, most
// recently updated first.
func (c *Client) ListRepositories(ctx context.Context, limit int) ([]models.Repository, error) {
	opts := &github.RepositoryListByAuthenticatedUserOptions{
		Sort:        "updated",
		ListOptions: github.ListOptions{PerPage: pageSize(limit, c.perPage)},
	}

	var repos []models.Repository
	for {
		page, resp, err := withRateLimitRetry(ctx, c, "list repositories", func() ([]*github.Repository, *github.Response, error) {
			return c.repoService.ListByAuthenticatedUser(ctx, opts)
		})
		if err != nil {
			return nil, c.mapError("list repositories", models.RepoRef{}, errors.ErrRepositoryNotFound, resp, err)
		}

		for _, r := range page {
			repos = append(repos, toRepository(r))
			if limit > 0 && len(repos) >= limit {
				return repos, nil
			}
		}

		if resp == nil || resp.NextPage == 0 {
			return repos, nil
		}
		opts.Page = resp.NextPage
	}
}

func (c *Client) CreateRepository(ctx context.Context, repo models.NewRepository) (models.Repository, error) {
	created, resp, err := withRateLimitRetry(ctx, c, "create repository", func() (*github.Repository, *github.Response, error) {
		return c.repoService.Create(ctx, "", &github.Repository{
			Name:        github.Ptr(repo.Name),
			Description: github.Ptr(repo.Description),
			Private:     github.Ptr(repo.Private),
			AutoInit:    github.Ptr(repo.AutoInit),
		})
	})
	if err != nil {
		return models.Repository{}, c.mapError("create repository", models.RepoRef{Name: repo.Name}, errors.ErrRepositoryNotFound, resp, err)
	}

	logger.Info(ctx, "repository created", "repo", created.GetFullName())
	return toRepository(created), nil
}

// RepositorySummary collects the repository metadata and the subjects of its
// latest commits.
func (c *Client) RepositorySummary(ctx context.Context, repo models.RepoRef) (models.RepoSummary, error) {
	var (
		summary models.RepoSummary
		recent  []string
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		r, resp, err := withRateLimitRetry(gctx, c, "get repository", func() (*github.Repository, *github.Response, error) {
			return c.repoService.Get(gctx, repo.Owner, repo.Name)
		})
		if err != nil {
			return c.mapError("get repository", repo, errors.ErrRepositoryNotFound, resp, err)
		}

		summary = models.RepoSummary{
			FullName:      r.GetFullName(),
			Description:   r.GetDescription(),
			Language:      r.GetLanguage(),
			Stars:         r.GetStargazersCount(),
			Forks:         r.GetForksCount(),
			OpenIssues:    r.GetOpenIssuesCount(),
			Watchers:      r.GetSubscribersCount(),
			DefaultBranch: r.GetDefaultBranch(),
			Topics:        r.Topics,
			CreatedAt:     r.GetCreatedAt().Time,
			PushedAt:      r.GetPushedAt().Time,
			Archived:      r.GetArchived(),
			Fork:          r.GetFork(),
			License:       r.GetLicense().GetName(),
		}
		return nil
	})

	g.Go(func() error {
		commits, resp, err := withRateLimitRetry(gctx, c, "list commits", func() ([]*github.RepositoryCommit, *github.Response, error) {
			return c.repoService.ListCommits(gctx, repo.Owner, repo.Name, &github.CommitsListOptions{
				ListOptions: github.ListOptions{PerPage: recentCommitsCount},
			})
		})
		if err != nil {
			// An empty repository answers 409; the summary is still useful without commits.
			if resp != nil && resp.StatusCode == http.StatusConflict {
				return nil
			}
			return c.mapError("list commits", repo, errors.ErrRepositoryNotFound, resp, err)
		}
		for _, commit := range commits {
			subject, _, _ := strings.Cut(commit.GetCommit().GetMessage(), "\n")
			recent = append(recent, subject)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return models.RepoSummary{}, err
	}
	summary.RecentCommits = recent
	return summary, nil
}

func (c *Client) CreateIssue(ctx context.Context, repo models.RepoRef, title, body string, labels []string) (models.Issue, error) {
	req := &github.IssueRequest{
		Title: github.Ptr(title),
		Body:  github.Ptr(body),
	}
	if len(labels) > 0 {
		req.Labels = &labels
	}

	issue, resp, err := withRateLimitRetry(ctx, c, "create issue", func() (*github.Issue, *github.Response, error) {
		return c.issuesService.Create(ctx, repo.Owner, repo.Name, req)
	})
	if err != nil {
		return models.Issue{}, c.mapError("create issue", repo, errors.ErrRepositoryNotFound, resp, err)
	}

	logger.Info(ctx, "issue created",
		"repo", repo.String(),
		"issue_number", issue.GetNumber())
	return toIssue(issue), nil
}

func (c *Client) GetIssue(ctx context.Context, repo models.RepoRef, number int) (models.Issue, error) {
	issue, resp, err := withRateLimitRetry(ctx, c, "get issue", func() (*github.Issue, *github.Response, error) {
		return c.issuesService.Get(ctx, repo.Owner, repo.Name, number)
	})
	if err != nil {
		return models.Issue{}, c.mapError("get issue", repo, errors.ErrIssueNotFound, resp, err).
			WithContext("issue_number", number)
	}
	return toIssue(issue), nil
}

func (c *Client) AddLabels(ctx context.Context, repo models.RepoRef, number int, labels []string) error {
	if len(labels) == 0 {
		return nil
	}

	_, resp, err := withRateLimitRetry(ctx, c, "add labels", func() ([]*github.Label, *github.Response, error) {
		return c.issuesService.AddLabelsToIssue(ctx, repo.Owner, repo.Name, number, labels)
	})
	if err != nil {
		return c.mapError("add labels", repo, errors.ErrIssueNotFound, resp, err).
			WithContext("issue_number", number)
	}

	logger.Debug(ctx, "labels added",
		"repo", repo.String(),
		"issue_number", number,
		"labels", labels)
	return nil
}

// AuthenticatedUser returns the login the token belongs to.
func (c *Client) AuthenticatedUser(ctx context.Context) (string, error) {
	user, resp, err := withRateLimitRetry(ctx, c, "get user", func() (*github.User, *github.Response, error) {
		return c.usersService.Get(ctx, "")
	})
	if err != nil {
		return "", c.mapError("get user", models.RepoRef{}, errors.ErrGitHubTokenInvalid, resp, err)
	}
	return user.GetLogin(), nil
}

// mapError turns a go-github failure into an AppError of the matching kind.
// notFound is returned for 404 so callers can tell a missing PR from a
// missing repository.
func (c *Client) mapError(op string, repo models.RepoRef, notFound *errors.AppError, resp *github.Response, err error) *errors.AppError {
	var appErr *errors.AppError

	var rateErr *github.RateLimitError
	var abuseErr *github.AbuseRateLimitError
	switch {
	case stderrors.As(err, &rateErr):
		appErr = errors.ErrGitHubRateLimit.WithError(err).
			WithContext("reset", rateErr.Rate.Reset.Time.Format(time.RFC3339))
	case stderrors.As(err, &abuseErr):
		appErr = errors.ErrGitHubRateLimit.WithError(err)
	case resp != nil && resp.StatusCode == http.StatusUnauthorized:
		appErr = errors.ErrGitHubTokenInvalid.WithError(err)
	case resp != nil && resp.StatusCode == http.StatusForbidden:
		appErr = errors.ErrGitHubInsufficientPerms.WithError(err)
	case resp != nil && resp.StatusCode == http.StatusNotFound:
		appErr = notFound.WithError(err)
	case resp != nil && resp.StatusCode == http.StatusTooManyRequests:
		appErr = errors.ErrGitHubRateLimit.WithError(err).
			WithContext("retry_after", resp.Header.Get("Retry-After"))
	default:
		appErr = errors.ErrGitHubRequest.WithError(err)
	}

	appErr = appErr.WithContext("operation", op)
	if repo.Name != "" {
		appErr = appErr.WithContext("repo", repo.String())
	}
	if resp != nil {
		appErr = appErr.WithContext("status_code", resp.StatusCode)
	}
	return appErr
}

// withRateLimitRetry repeats call while GitHub reports a rate limit, waiting
// until the reset time (at most maxRateLimitWait) between attempts.
func withRateLimitRetry[T any](ctx context.Context, c *Client, op string, call func() (T, *github.Response, error)) (T, *github.Response, error) {
	var (
		result T
		resp   *github.Response
		err    error
	)
	for attempt := 1; attempt <= maxRateLimitAttempts; attempt++ {
		result, resp, err = call()
		wait, limited := rateLimitWait(err, c.now())
		if !limited || attempt == maxRateLimitAttempts {
			break
		}

		logger.Warn(ctx, "github rate limit reached, waiting before retry",
			"operation", op,
			"wait", wait.String(),
			"attempt", attempt)

		if sleepErr := c.sleep(ctx, wait); sleepErr != nil {
			break
		}
	}
	return result, resp, err
}

func rateLimitWait(err error, now time.Time) (time.Duration, bool) {
	if err == nil {
		return 0, false
	}

	var wait time.Duration
	var rateErr *github.RateLimitError
	var abuseErr *github.AbuseRateLimitError
	switch {
	case stderrors.As(err, &rateErr):
		wait = rateErr.Rate.Reset.Time.Sub(now)
	case stderrors.As(err, &abuseErr):
		wait = abuseErr.GetRetryAfter()
	default:
		return 0, false
	}

	if wait < 0 {
		wait = 0
	}
	if wait > maxRateLimitWait {
		wait = maxRateLimitWait
	}
	return wait, true
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func pageSize(limit, perPage int) int {
	if limit > 0 && limit < perPage {
		return limit
	}
	return perPage
}

func toPullRequest(pr *github.PullRequest) models.PullRequest {
	return models.PullRequest{
		Number:       pr.GetNumber(),
		Title:        pr.GetTitle(),
		Body:         pr.GetBody(),
		Author:       pr.GetUser().GetLogin(),
		State:        pr.GetState(),
		URL:          pr.GetHTMLURL(),
		HeadBranch:   pr.GetHead().GetRef(),
		BaseBranch:   pr.GetBase().GetRef(),
		ChangedFiles: pr.GetChangedFiles(),
	}
}

func toRepository(r *github.Repository) models.Repository {
	return models.Repository{
		Name:        r.GetName(),
		FullName:    r.GetFullName(),
		Description: r.GetDescription(),
		Private:     r.GetPrivate(),
		Stars:       r.GetStargazersCount(),
		URL:         r.GetHTMLURL(),
		CloneURL:    r.GetCloneURL(),
	}
}

func toIssue(issue *github.Issue) models.Issue {
	labels := make([]string, 0, len(issue.Labels))
	for _, l := range issue.Labels {
		labels = append(labels, l.GetName())
	}
	return models.Issue{
		Number: issue.GetNumber(),
		Title:  issue.GetTitle(),
		Body:   issue.GetBody(),
		State:  issue.GetState(),
		Labels: labels,
		URL:    issue.GetHTMLURL(),
	}
}
