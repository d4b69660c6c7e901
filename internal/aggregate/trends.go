package aggregate

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/joescodelmao/nutrilog/internal/model"
	"github.com/joescodelmao/nutrilog/internal/repository"
)

// dateLayout はトレンド集計で使用する日付の文字列表現。
const dateLayout = "2006-01-02"

// DayPoint は期間トレンドの1日分のデータ点を表す。
type DayPoint struct {
	Date       string          `json:"date"`
	Totals     model.Nutrients `json:"totals"`
	EntryCount int             `json:"entryCount"`
}

// Trends は期間トレンドの集計結果を表す。
// Daysは時系列順で、期間の全日が含まれる（記録のない日は合計ゼロ）。
type Trends struct {
	StartDate string          `json:"startDate"`
	EndDate   string          `json:"endDate"`
	Days      []DayPoint      `json:"days"`
	Averages  model.Nutrients `json:"averages"`
}

// Aggregator は食事記録の期間集計を行う。
type Aggregator struct {
	logRepo       repository.FoodLogRepository
	logger        *slog.Logger
	maxConcurrent int
}

// NewAggregator はAggregator の新しいインスタンスを生成する。
// maxConcurrentは日次集計の並列度の上限（1未満は1として扱う）。
func NewAggregator(logRepo repository.FoodLogRepository, logger *slog.Logger, maxConcurrent int) *Aggregator {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Aggregator{
		logRepo:       logRepo,
		logger:        logger,
		maxConcurrent: maxConcurrent,
	}
}

// ComputeTrends は終了日から遡ってwindowDays日分（両端含む）のトレンドを算出する。
// 期間内の記録は1回の範囲読み出しで取得する。記録のない日は合計ゼロの
// データ点として期間に含まれ、平均は常にwindowDaysで除算される。
// 日次集計はセマフォで並列度を制限して実行するが、結果は逐次実行と同一になる。
func (a *Aggregator) ComputeTrends(ctx context.Context, userID string, endDate time.Time, windowDays int) (*Trends, error) {
	if windowDays < 1 {
		return nil, model.NewValidationError("集計期間は1日以上で指定してください")
	}

	end := endDate
	start := end.AddDate(0, 0, -(windowDays - 1))

	logs, err := a.logRepo.FindByUserAndDateRange(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}

	byDate := make(map[string]*model.DailyLog, len(logs))
	for _, log := range logs {
		byDate[log.Date] = log
	}

	days := make([]DayPoint, windowDays)
	sem := make(chan struct{}, a.maxConcurrent)
	var wg sync.WaitGroup

	for i := 0; i < windowDays; i++ {
		day := start.AddDate(0, 0, i).Format(dateLayout)
		log, ok := byDate[day]
		if !ok {
			log = model.NewDailyLog(userID, day)
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(i int, log *model.DailyLog) {
			defer wg.Done()
			defer func() { <-sem }()

			totals := ComputeTotals(log)
			days[i] = DayPoint{
				Date:       log.Date,
				Totals:     totals.Total,
				EntryCount: log.EntryCount(),
			}
		}(i, log)
	}
	wg.Wait()

	var sum model.Nutrients
	for _, d := range days {
		sum.Add(d.Totals, 1)
	}
	var averages model.Nutrients
	averages.Add(sum, 1/float64(windowDays))

	a.logger.Debug("期間トレンドを算出しました",
		slog.String("user_id", userID),
		slog.Int("window_days", windowDays),
		slog.Int("logged_days", len(logs)),
	)

	return &Trends{
		StartDate: start.Format(dateLayout),
		EndDate:   end.Format(dateLayout),
		Days:      days,
		Averages:  averages.Rounded(),
	}, nil
}
