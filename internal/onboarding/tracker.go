package onboarding

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"agent-orchestrator/internal/common/logger"
)

const (
	employeeKeyPrefix = "onboarding:employee:"
	taskKeyPrefix     = "onboarding:tasks:"
	employeeSetKey    = "onboarding:employees"
)

// Employee is a staff member going through an onboarding program.
type Employee struct {
	ID                  string `json:"id"`
	Name                string `json:"name"`
	Email               string `json:"email"`
	Role                string `json:"role"`
	Department          string `json:"department"`
	StartDate           string `json:"start_date"`
	Manager             string `json:"manager"`
	OnboardingProgramID string `json:"onboarding_program_id"`
	Status              string `json:"status"`
}

// ProgressReport is one employee's onboarding snapshot.
type ProgressReport struct {
	Employee           Employee `json:"employee"`
	Program            Program  `json:"program"`
	ProgressPercentage float64  `json:"progress_percentage"`
}

// Analytics aggregates onboarding progress across all employees.
type Analytics struct {
	TotalEmployees  int                `json:"total_employees"`
	AverageProgress float64            `json:"average_progress"`
	CompletionRate  float64            `json:"completion_rate"`
	ByRole          map[string]float64 `json:"by_role"`
}

// Tracker persists employees and per-employee task completion in Redis.
// Program templates are process-local; only mutable state goes to the store.
type Tracker struct {
	rdb    *redis.Client
	logger logger.Logger
	now    func() time.Time
}

func NewTracker(rdb *redis.Client, log logger.Logger) *Tracker {
	return &Tracker{rdb: rdb, logger: log, now: time.Now}
}

// CreateEmployee registers an employee and assigns the program matching
// their role.
func (t *Tracker) CreateEmployee(ctx context.Context, name, email, role, department, manager string) (*Employee, error) {
	employee := &Employee{
		ID:                  uuid.NewString(),
		Name:                name,
		Email:               email,
		Role:                role,
		Department:          department,
		StartDate:           t.now().Format("2006-01-02"),
		Manager:             manager,
		OnboardingProgramID: ProgramForRole(role),
		Status:              "active",
	}

	raw, err := json.Marshal(employee)
	if err != nil {
		return nil, fmt.Errorf("marshal employee: %w", err)
	}

	pipe := t.rdb.TxPipeline()
	pipe.Set(ctx, employeeKeyPrefix+employee.ID, raw, 0)
	pipe.SAdd(ctx, employeeSetKey, employee.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("store employee: %w", err)
	}

	t.logger.Info("Employee onboarding started", map[string]interface{}{
		"employeeId": employee.ID,
		"role":       role,
		"program":    employee.OnboardingProgramID,
	})
	return employee, nil
}

// Progress returns an employee's record with task completion folded in.
func (t *Tracker) Progress(ctx context.Context, employeeID string) (*ProgressReport, error) {
	employee, err := t.getEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	program, ok := ProgramByID(employee.OnboardingProgramID)
	if !ok {
		return nil, fmt.Errorf("onboarding program %s not found", employee.OnboardingProgramID)
	}

	completed, err := t.rdb.HGetAll(ctx, taskKeyPrefix+employeeID).Result()
	if err != nil {
		return nil, fmt.Errorf("load task completion: %w", err)
	}

	done := 0
	for i := range program.Tasks {
		if when, ok := completed[program.Tasks[i].ID]; ok {
			program.Tasks[i].Completed = true
			program.Tasks[i].CompletedDate = when
			done++
		}
	}

	report := &ProgressReport{Employee: *employee, Program: program}
	if len(program.Tasks) > 0 {
		report.ProgressPercentage = float64(done) / float64(len(program.Tasks)) * 100
	}
	return report, nil
}

// CompleteTask marks one task done and returns the refreshed report.
func (t *Tracker) CompleteTask(ctx context.Context, employeeID, taskID string) (*ProgressReport, error) {
	employee, err := t.getEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	program, ok := ProgramByID(employee.OnboardingProgramID)
	if !ok {
		return nil, fmt.Errorf("onboarding program %s not found", employee.OnboardingProgramID)
	}

	known := false
	for _, task := range program.Tasks {
		if task.ID == taskID {
			known = true
			break
		}
	}
	if !known {
		return nil, fmt.Errorf("task %s not in program %s", taskID, program.ID)
	}

	stamp := t.now().Format("2006-01-02 15:04:05")
	if err := t.rdb.HSet(ctx, taskKeyPrefix+employeeID, taskID, stamp).Err(); err != nil {
		return nil, fmt.Errorf("record task completion: %w", err)
	}
	return t.Progress(ctx, employeeID)
}

// ListEmployees returns every registered employee's progress report.
func (t *Tracker) ListEmployees(ctx context.Context) ([]ProgressReport, error) {
	ids, err := t.rdb.SMembers(ctx, employeeSetKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}

	reports := make([]ProgressReport, 0, len(ids))
	for _, id := range ids {
		report, err := t.Progress(ctx, id)
		if err != nil {
			t.logger.Warn("Skipping unreadable employee record", map[string]interface{}{
				"employeeId": id,
				"error":      err.Error(),
			})
			continue
		}
		reports = append(reports, *report)
	}
	return reports, nil
}

// ComputeAnalytics aggregates progress across all employees.
func (t *Tracker) ComputeAnalytics(ctx context.Context) (*Analytics, error) {
	reports, err := t.ListEmployees(ctx)
	if err != nil {
		return nil, err
	}

	analytics := &Analytics{ByRole: map[string]float64{}}
	analytics.TotalEmployees = len(reports)
	if len(reports) == 0 {
		return analytics, nil
	}

	roleTotals := map[string]float64{}
	roleCounts := map[string]int{}
	completedCount := 0
	totalProgress := 0.0

	for _, r := range reports {
		totalProgress += r.ProgressPercentage
		roleTotals[r.Employee.Role] += r.ProgressPercentage
		roleCounts[r.Employee.Role]++
		if r.ProgressPercentage >= 100 {
			completedCount++
		}
	}

	analytics.AverageProgress = totalProgress / float64(len(reports))
	analytics.CompletionRate = float64(completedCount) / float64(len(reports)) * 100
	for role, total := range roleTotals {
		analytics.ByRole[role] = total / float64(roleCounts[role])
	}
	return analytics, nil
}

// Clear removes all onboarding state, returning the employee count removed.
func (t *Tracker) Clear(ctx context.Context) (int, error) {
	ids, err := t.rdb.SMembers(ctx, employeeSetKey).Result()
	if err != nil {
		return 0, fmt.Errorf("list employees: %w", err)
	}

	pipe := t.rdb.TxPipeline()
	for _, id := range ids {
		pipe.Del(ctx, employeeKeyPrefix+id)
		pipe.Del(ctx, taskKeyPrefix+id)
	}
	pipe.Del(ctx, employeeSetKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("clear onboarding state: %w", err)
	}
	return len(ids), nil
}

func (t *Tracker) getEmployee(ctx context.Context, employeeID string) (*Employee, error) {
	raw, err := t.rdb.Get(ctx, employeeKeyPrefix+employeeID).Result()
	if err == redis.Nil {
		return nil, fmt.Errorf("employee %s not found", employeeID)
	}
	if err != nil {
		return nil, fmt.Errorf("load employee: %w", err)
	}

	var employee Employee
	if err := json.Unmarshal([]byte(raw), &employee); err != nil {
		return nil, fmt.Errorf("decode employee: %w", err)
	}
	return &employee, nil
}
