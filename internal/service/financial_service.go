package service

import (
	"sort"

	"go-construction-inventory/internal/model"
	"go-construction-inventory/internal/repository"
	"go-construction-inventory/pkg/wib"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const monthlyWindowDays = 180

var hundred = decimal.NewFromInt(100)

type FinancialService interface {
	GetSummary() (*FinancialSummary, error)
	GetMonthly() (map[string]*MonthlyFinancial, error)
	GetProjectAllocation() ([]ProjectAllocation, error)
	GetProjectsProgress() ([]ProjectProgress, error)
	GetProjectFinancial(projectID uuid.UUID) (*ProjectFinancial, error)
}

type FinancialSummary struct {
	CashBalance          decimal.Decimal `json:"cash_balance"`
	NetProfit            decimal.Decimal `json:"net_profit"`
	TotalAssets          decimal.Decimal `json:"total_assets"`
	TotalRevenue         decimal.Decimal `json:"total_revenue"`
	TotalIncome          decimal.Decimal `json:"total_income"`
	TotalProjectValue    decimal.Decimal `json:"total_project_value"`
	TotalCOGS            decimal.Decimal `json:"total_cogs"`
	TotalOpex            decimal.Decimal `json:"total_opex"`
	TotalAssetsPurchased decimal.Decimal `json:"total_assets_purchased"`
	TotalLiabilities     decimal.Decimal `json:"total_liabilities"`
}

type MonthlyFinancial struct {
	Revenue   decimal.Decimal `json:"revenue"`
	Income    decimal.Decimal `json:"income"`
	COGS      decimal.Decimal `json:"cogs"`
	Opex      decimal.Decimal `json:"opex"`
	NetProfit decimal.Decimal `json:"net_profit"`
}

type ProjectAllocation struct {
	Name  string          `json:"name"`
	Value decimal.Decimal `json:"value"`
}

type ProjectProgress struct {
	ProjectID           uuid.UUID       `json:"project_id"`
	ProjectName         string          `json:"project_name"`
	ProjectValue        decimal.Decimal `json:"project_value"`
	Income              decimal.Decimal `json:"income"`
	Expenses            decimal.Decimal `json:"expenses"`
	Balance             decimal.Decimal `json:"balance"`
	IncomePercentage    decimal.Decimal `json:"income_percentage"`
	ExpensesPercentage  decimal.Decimal `json:"expenses_percentage"`
	RemainingPercentage decimal.Decimal `json:"remaining_percentage"`
	Status              string          `json:"status"`
}

type ProjectFinancial struct {
	Project      *model.Project      `json:"project"`
	TotalIncome  decimal.Decimal     `json:"total_income"`
	TotalExpense decimal.Decimal     `json:"total_expense"`
	Net          decimal.Decimal     `json:"net"`
	Transactions []model.Transaction `json:"transactions"`
}

type financialService struct {
	transactionRepo repository.TransactionRepository
	projectRepo     repository.ProjectRepository
}

func NewFinancialService(transactionRepo repository.TransactionRepository, projectRepo repository.ProjectRepository) FinancialService {
	return &financialService{transactionRepo: transactionRepo, projectRepo: projectRepo}
}

func isIncome(c model.TransactionCategory) bool {
	return c == model.CategoryKasMasuk || c == model.CategoryUangMasuk
}

func isCOGS(c model.TransactionCategory) bool {
	return c == model.CategoryBahan || c == model.CategoryUpah || c == model.CategoryAlat
}

func isOpex(c model.TransactionCategory) bool {
	return c == model.CategoryOperasional || c == model.CategoryVendor
}

// splitIncome sums income categories apart from everything else.
func splitIncome(sums map[model.TransactionCategory]decimal.Decimal) (income, expenses decimal.Decimal) {
	for category, total := range sums {
		if isIncome(category) {
			income = income.Add(total)
		} else {
			expenses = expenses.Add(total)
		}
	}
	return income, expenses
}

// GetSummary computes company wide figures.
// Revenue is project value plus income plus liabilities; cash is income plus liabilities minus spend.
func (s *financialService) GetSummary() (*FinancialSummary, error) {
	sums, err := s.transactionRepo.SumByCategory(nil)
	if err != nil {
		return nil, err
	}
	projectValue, err := s.projectRepo.TotalValue()
	if err != nil {
		return nil, err
	}

	var sum FinancialSummary
	for category, total := range sums {
		switch {
		case isIncome(category):
			sum.TotalIncome = sum.TotalIncome.Add(total)
		case isCOGS(category):
			sum.TotalCOGS = sum.TotalCOGS.Add(total)
		case isOpex(category):
			sum.TotalOpex = sum.TotalOpex.Add(total)
		case category == model.CategoryAset:
			sum.TotalAssetsPurchased = sum.TotalAssetsPurchased.Add(total)
		case category == model.CategoryHutang:
			sum.TotalLiabilities = sum.TotalLiabilities.Add(total)
		}
	}

	sum.TotalProjectValue = projectValue
	sum.TotalRevenue = projectValue.Add(sum.TotalIncome).Add(sum.TotalLiabilities)
	spent := sum.TotalCOGS.Add(sum.TotalOpex).Add(sum.TotalAssetsPurchased)
	sum.CashBalance = sum.TotalIncome.Add(sum.TotalLiabilities).Sub(spent)
	sum.NetProfit = sum.TotalRevenue.Sub(spent)
	sum.TotalAssets = sum.TotalAssetsPurchased
	if sum.CashBalance.IsPositive() {
		sum.TotalAssets = sum.TotalAssets.Add(sum.CashBalance)
	}
	return &sum, nil
}

// GetMonthly groups the last 180 days of transactions by YYYY-MM in WIB.
func (s *financialService) GetMonthly() (map[string]*MonthlyFinancial, error) {
	transactions, err := s.transactionRepo.FindSince(wib.Now().AddDate(0, 0, -monthlyWindowDays))
	if err != nil {
		return nil, err
	}

	monthly := make(map[string]*MonthlyFinancial)
	for _, t := range transactions {
		key := t.TransactionDate.In(wib.Location).Format("2006-01")
		m, ok := monthly[key]
		if !ok {
			m = &MonthlyFinancial{}
			monthly[key] = m
		}
		switch {
		case isIncome(t.Category):
			m.Income = m.Income.Add(t.Amount)
			m.Revenue = m.Revenue.Add(t.Amount)
		case isCOGS(t.Category):
			m.COGS = m.COGS.Add(t.Amount)
		case isOpex(t.Category):
			m.Opex = m.Opex.Add(t.Amount)
		}
	}
	for _, m := range monthly {
		m.NetProfit = m.Revenue.Sub(m.COGS).Sub(m.Opex)
	}
	return monthly, nil
}

// GetProjectAllocation totals every transaction amount of each active project.
func (s *financialService) GetProjectAllocation() ([]ProjectAllocation, error) {
	projects, err := s.projectRepo.FindAll("")
	if err != nil {
		return nil, err
	}
	sums, err := s.transactionRepo.SumByProject()
	if err != nil {
		return nil, err
	}

	allocation := []ProjectAllocation{}
	for _, p := range projects {
		if p.Status != model.ProjectActive {
			continue
		}
		total := decimal.Zero
		for _, amount := range sums[p.ID] {
			total = total.Add(amount)
		}
		allocation = append(allocation, ProjectAllocation{Name: p.Name, Value: total})
	}
	return allocation, nil
}

func percentOf(part, whole decimal.Decimal) decimal.Decimal {
	if !whole.IsPositive() {
		return decimal.Zero
	}
	return part.Mul(hundred).Div(whole)
}

func (s *financialService) GetProjectsProgress() ([]ProjectProgress, error) {
	projects, err := s.projectRepo.FindAll("")
	if err != nil {
		return nil, err
	}
	sums, err := s.transactionRepo.SumByProject()
	if err != nil {
		return nil, err
	}

	progress := make([]ProjectProgress, 0, len(projects))
	for _, p := range projects {
		income, expenses := splitIncome(sums[p.ID])
		incomePct := percentOf(income, p.ProjectValue)
		remaining := decimal.Zero
		if incomePct.LessThanOrEqual(hundred) {
			remaining = hundred.Sub(incomePct)
		}
		progress = append(progress, ProjectProgress{
			ProjectID:           p.ID,
			ProjectName:         p.Name,
			ProjectValue:        p.ProjectValue,
			Income:              income,
			Expenses:            expenses,
			Balance:             income.Sub(expenses),
			IncomePercentage:    incomePct.Round(1),
			ExpensesPercentage:  percentOf(expenses, p.ProjectValue).Round(1),
			RemainingPercentage: remaining.Round(1),
			Status:              p.Status,
		})
	}
	sort.SliceStable(progress, func(i, j int) bool { return progress[i].ProjectName < progress[j].ProjectName })
	return progress, nil
}

func (s *financialService) GetProjectFinancial(projectID uuid.UUID) (*ProjectFinancial, error) {
	project, err := s.projectRepo.FindByID(projectID)
	if err != nil {
		return nil, notFoundOr(err, "Project not found")
	}
	transactions, err := s.transactionRepo.FindAll(repository.TransactionFilter{ProjectID: &projectID})
	if err != nil {
		return nil, err
	}

	pf := &ProjectFinancial{Project: project, Transactions: transactions}
	for _, t := range transactions {
		if isIncome(t.Category) {
			pf.TotalIncome = pf.TotalIncome.Add(t.Amount)
		} else {
			pf.TotalExpense = pf.TotalExpense.Add(t.Amount)
		}
	}
	pf.Net = pf.TotalIncome.Sub(pf.TotalExpense)
	return pf, nil
}
