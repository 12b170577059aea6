package mailer

import (
	"fmt"
	"os"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendInvitation(toEmail, requesterName, buildingAddress string) error
	SendInvitationResolved(toEmail, partnerName, buildingAddress, status string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	frontendURL string
}

func NewEmailService(host string, port int, username, password, senderEmail string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	frontendURL := os.Getenv("CLIENT_URL")

	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
		frontendURL: frontendURL,
	}
}

func (s *emailService) SendInvitation(toEmail, requesterName, buildingAddress string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "Invitation à une prospection en duo")

	link := fmt.Sprintf("%s/prospection/invitations", s.frontendURL)

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Invitation à prospecter en duo</h2>
			<p><strong>%s</strong> vous invite à prospecter l'immeuble suivant :</p>
			<p>%s</p>
			<a href="%s" style="background-color: #007BFF; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px; display: inline-block;">Répondre à l'invitation</a>
			<p>L'invitation reste en attente jusqu'à votre réponse.</p>
		</div>
	`, requesterName, buildingAddress, link)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send invitation to %s: %v\n", toEmail, err)
		return err
	}

	fmt.Printf("[MAILER] Invitation sent to %s\n", toEmail)
	return nil
}

func (s *emailService) SendInvitationResolved(toEmail, partnerName, buildingAddress, status string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "Réponse à votre invitation de prospection")

	var verdict string
	if status == "ACCEPTED" {
		verdict = "a accepté"
	} else {
		verdict = "a refusé"
	}

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Réponse à votre invitation</h2>
			<p><strong>%s</strong> %s votre invitation pour l'immeuble :</p>
			<p>%s</p>
		</div>
	`, partnerName, verdict, buildingAddress)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send resolution to %s: %v\n", toEmail, err)
		return err
	}

	fmt.Printf("[MAILER] Resolution sent to %s\n", toEmail)
	return nil
}
