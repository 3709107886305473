package payment

import "context"

// checkout.session.completed だけを処理対象にする
const EventTypeCheckoutSessionCompleted = "checkout.session.completed"

// 決済プロバイダに渡す1商品分のline item。
// UnitAmountは最小通貨単位（割引後価格×100）。
type CheckoutItem struct {
	ProductID  int64
	Name       string
	Images     []string
	UnitAmount int64
	Quantity   int64
}

type CheckoutSessionInput struct {
	CustomerEmail string
	//userId/addressIdをここに入れてwebhookで取り戻す
	Metadata   map[string]string
	Items      []CheckoutItem
	SuccessURL string
	CancelURL  string
}

// webhookで受け取った完了済みセッション。
type CompletedSession struct {
	ID              string
	PaymentIntentID string
	PaymentStatus   string
	Metadata        map[string]string
}

// 署名検証済みのイベント。
// Sessionは checkout.session.completed のときだけ入る。
type Event struct {
	Type    string
	Session *CompletedSession
}

// セッションの購入明細（商品詳細を展開済み）。
// AmountTotalは最小通貨単位。
type PurchasedItem struct {
	ProductID   int64
	Name        string
	Images      []string
	AmountTotal int64
}

// Gateway は決済プロバイダとの境界。
type Gateway interface {
	//hosted checkoutセッションを作ってリダイレクトURLを返す
	CreateCheckoutSession(ctx context.Context, in CheckoutSessionInput) (string, error)
	//セッションの購入明細を商品展開付きで取得する
	SessionLineItems(ctx context.Context, sessionID string) ([]PurchasedItem, error)
	//raw bodyと署名ヘッダからイベントを検証・復元する
	VerifyEvent(payload []byte, signature string) (Event, error)
}
