// Package dashboard は取得済みレコード集合からの統計集計を提供する。
//
// 集計は一様な規則に従う:
//   - 合計では欠損値（nil）を0として扱う
//   - 平均・評点では欠損値を分母から除外する
//   - 分母が0になる場合は0（表示用には "0.0%"）を返す
package dashboard

import "fmt"

// SumFloat は値の合計を返す。nilは0として扱う。
func SumFloat(values []*float64) float64 {
	var sum float64
	for _, v := range values {
		if v != nil {
			sum += *v
		}
	}
	return sum
}

// SafeRatio はnum/denを返す。分母が0の場合は0を返す。
func SafeRatio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

// PercentString は割合を小数1桁のパーセント表記で返す。
// 割合0（分母0を含む）は "0.0%" となる。
func PercentString(ratio float64) string {
	return fmt.Sprintf("%.1f%%", ratio*100)
}

// AverageExcludingNil は欠損値を分母から除外した平均を返す。
// 有効な値が1つもない場合は0を返す。
func AverageExcludingNil(values []*float64) float64 {
	var sum float64
	var count int
	for _, v := range values {
		if v != nil {
			sum += *v
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}
